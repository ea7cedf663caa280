package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusTodo  Status = "Todo"
	StatusDoing Status = "Doing"
	StatusDone  Status = "Done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

type Container string

const (
	ContainerTaskpad    Container = "Taskpad"
	ContainerBackburner Container = "Backburner"
	ContainerShelved    Container = "Shelved"
	ContainerArchived   Container = "Archived"
)

// Containers lists all containers in their canonical display order.
func Containers() []Container {
	return []Container{ContainerTaskpad, ContainerBackburner, ContainerShelved, ContainerArchived}
}

func (c Container) Valid() bool {
	switch c {
	case ContainerTaskpad, ContainerBackburner, ContainerShelved, ContainerArchived:
		return true
	}
	return false
}

// ParseContainer matches a container name case-insensitively.
func ParseContainer(s string) (Container, bool) {
	for _, c := range Containers() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

type Task struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Container Container `json:"container"`
	Status    Status    `json:"status"`
	ParentID  *int      `json:"parent_id,omitempty"`
	ChildIDs  []int     `json:"child_ids"`
}

func (t *Task) HasChildren() bool {
	return len(t.ChildIDs) > 0
}

func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}
