// SPDX-License-Identifier: EPL-2.0

package audpass

import (
	"fmt"
	"io"

	"github.com/ik5/audpass/device"
)

// PrintDevices writes the display names of the active capture and render
// endpoints, one per line, under an "Input devices:" and an "Output
// devices:" heading.
func PrintDevices(w io.Writer, e device.Enumerator) error {
	for _, list := range []struct {
		title string
		role  device.Role
	}{
		{"Input devices:", device.RoleCapture},
		{"Output devices:", device.RoleRender},
	} {
		names, err := device.Names(e, list.role)
		if err != nil {
			return fmt.Errorf("listing %s devices: %w", list.role, err)
		}
		fmt.Fprintln(w, list.title)
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
	}
	return nil
}
