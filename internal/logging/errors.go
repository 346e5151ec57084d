// SPDX-License-Identifier: EPL-2.0

package logging

import "errors"

var ErrInvalidLevel = errors.New("invalid debug level")
