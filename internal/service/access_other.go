//go:build !unix

package service

import (
	"fmt"
	"os"

	"github.com/mmcdole/culler/internal/domain"
)

// CheckAccess verifies every root is a readable directory
func CheckAccess(roots []string) error {
	for _, root := range roots {
		f, err := os.Open(root)
		if err != nil {
			if os.IsPermission(err) {
				return fmt.Errorf("%w: %s: %v", domain.ErrPermissionDenied, root, err)
			}
			return fmt.Errorf("library path %s: %w", root, err)
		}
		f.Close()
	}
	return nil
}
