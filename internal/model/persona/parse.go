package persona

import (
	"strconv"
	"strings"
)

// ParseDescription makes a best-effort pass at extracting demographics from a
// comma-separated free-text description such as
// "Sarah Mitchell, 32, Digital Marketing Manager, Manchester city centre".
// Fields that cannot be recovered are left zero; the full description is
// always preserved.
func ParseDescription(desc string) Structured {
	out := Structured{Description: strings.TrimSpace(desc)}

	parts := strings.Split(desc, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 0 {
		out.Name = parts[0]
	}
	if len(parts) > 1 {
		if age, err := strconv.Atoi(parts[1]); err == nil {
			out.Age = age
		}
	}
	if len(parts) > 2 {
		out.Occupation = parts[2]
	}
	if len(parts) > 3 {
		out.Region = parts[3]
	}
	if len(parts) > 4 {
		for _, part := range parts[4:] {
			lower := strings.ToLower(part)
			if strings.Contains(part, "£") && (strings.Contains(lower, "pay") || strings.Contains(lower, "income")) {
				out.Income = part
			}
		}
	}
	return out
}
