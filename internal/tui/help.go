package tui

const helpText = `# cyberorganism

Type on the compose line and press Enter to run a command; anything that
is not a command creates a task in the current container.

## Commands

| Command | Effect |
|---|---|
| ` + "`<text>`" + ` | create a task |
| ` + "`sub <task> <text>`" + ` | create a subtask |
| ` + "`edit <task> <text>`" + ` | replace a task's content |
| ` + "`done <task>`" + ` | mark a task Done |
| ` + "`move <task> <container>`" + ` | move a task and its subtree |
| ` + "`delete <task>`" + ` | delete a task and its subtree |
| ` + "`focus <task>`" + ` | focus a task |
| ` + "`show <container>`" + ` | switch container (Taskpad, Backburner, Shelved, Archived) |
| ` + "`fold <task>`" + ` / ` + "`unfold <task>`" + ` | collapse or expand a subtree |
| ` + "`collapse`" + ` | fold everything visible |
| ` + "`help`" + ` | toggle this overlay |

` + "`<task>`" + ` is a dotted display index like ` + "`2.1`" + `, or a few words of the
task's content (fuzzy matched).

## Keys

| Key | Tasks | Suggestions |
|---|---|---|
| Enter | run command / commit edit | |
| Shift+Enter (Alt+Enter) | new task / new subtask | |
| Ctrl+Enter (Alt+D) | complete focused task | pin item |
| Up / Down | move focus | move focus |
| Ctrl+Up / Ctrl+Down | fold / unfold | expand item |
| PgDn | | load next page |
| Ctrl+Space | switch mode | switch mode |
| Esc | back to compose line | |
| Ctrl+C | quit | quit |
`

func renderHelp(width int) string {
	return renderMarkdown(helpText, width)
}
