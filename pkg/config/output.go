package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// OutputPath returns where the rendered image should be written. An explicit Output.Path wins;
// otherwise the file goes to <dir>/<scene>/render_<timestamp>.<format>. Scene file paths are
// reduced to their base name.
func (c *Config) OutputPath(scene string, now time.Time) string {
	if c.Output.Path != "" {
		return c.Output.Path
	}

	name := strings.TrimSuffix(filepath.Base(scene), filepath.Ext(scene))
	file := fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), c.Output.Format)
	return filepath.Join(c.Output.Dir, name, file)
}
