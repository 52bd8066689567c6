package templates

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"nfl-projections-go/logging"
)

// GetTemplateFuncs returns the template function map for HTML templates
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },

		// Membership checks for the filter form
		"hasInt": func(list []int, v int) bool {
			for _, x := range list {
				if x == v {
					return true
				}
			}
			return false
		},
		"hasString": func(list []string, v string) bool {
			for _, x := range list {
				if x == v {
					return true
				}
			}
			return false
		},

		"lower":       strings.ToLower,
		"contains":    strings.Contains,
		"columnLabel": columnLabel,
		"cellStyle":   cellStyle,

		"toJSON": func(v interface{}) template.JS {
			data, _ := json.Marshal(v)
			return template.JS(data)
		},
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict: number of arguments must be even")
			}
			result := make(map[string]interface{})
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key must be string, got %T", values[i])
				}
				result[key] = values[i+1]
			}
			return result, nil
		},

		"debugLog": func(msg string) string {
			logging.Debugf("TEMPLATE DEBUG: %s", msg)
			return ""
		},
	}
}

// Parse loads every *.html template in dir with the function map.
func Parse(dir string) (*template.Template, error) {
	return template.New("").Funcs(GetTemplateFuncs()).ParseGlob(filepath.Join(dir, "*.html"))
}

// columnLabel turns "player_display_name" into "player display name" and
// "True rushing_yards" into "True rushing yards".
func columnLabel(col string) string {
	return strings.ReplaceAll(col, "_", " ")
}

// cellStyle renders a background color for a table cell. Colors come from
// the z-score ramp and are always "#rrggbb".
func cellStyle(color string) template.CSS {
	if len(color) != 7 || color[0] != '#' {
		return ""
	}
	for _, c := range color[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return ""
		}
	}
	return template.CSS("background-color: " + color)
}
