// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"strings"
)

// Find returns the first active endpoint of role whose display name
// contains pattern. The match is case-sensitive.
//
// Enumeration errors are returned unwrapped so a caller can tell them apart
// from ErrNotFound and keep polling.
func Find(e Enumerator, pattern string, role Role) (Endpoint, error) {
	eps, err := e.Endpoints(role)
	if err != nil {
		return Endpoint{}, err
	}

	for _, ep := range eps {
		if !ep.Active || ep.Role != role {
			continue
		}
		if strings.Contains(ep.Name, pattern) {
			return ep, nil
		}
	}

	return Endpoint{}, fmt.Errorf("%w: %s %q", ErrNotFound, role, pattern)
}

// Names lists the display names of the active endpoints of role.
func Names(e Enumerator, role Role) ([]string, error) {
	eps, err := e.Endpoints(role)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(eps))
	for _, ep := range eps {
		if ep.Active && ep.Role == role {
			names = append(names, ep.Name)
		}
	}
	return names, nil
}
