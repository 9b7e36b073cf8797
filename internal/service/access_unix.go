//go:build unix

package service

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mmcdole/culler/internal/domain"
)

// CheckAccess verifies the process may list and modify every root
func CheckAccess(roots []string) error {
	for _, root := range roots {
		if err := unix.Access(root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			if err == unix.ENOENT {
				return fmt.Errorf("library path %s: %w", root, err)
			}
			return fmt.Errorf("%w: %s: %v", domain.ErrPermissionDenied, root, err)
		}
	}
	return nil
}
