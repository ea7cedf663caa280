package store

import "os"

// writeFileAtomic replaces path via a sibling temp file and rename so
// readers never observe a partial write.
func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
