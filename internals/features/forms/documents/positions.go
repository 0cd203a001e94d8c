package documents

import "strings"

var positionCodes = []struct {
	match []string
	code  string
}{
	{[]string{"graduate studies director", "program director"}, "PROGRAM_DIRECTOR"},
	{[]string{"department chair"}, "DEPT_CHAIR"},
	{[]string{"associate dean for graduate studies", "assistant dean for graduate studies"}, "ASSOC_DEAN"},
	{[]string{"vice provost", "dean of the graduate school"}, "VICE_PROVOST"},
}

// PositionCode maps an approval position label to the signature slot on signed documents.
func PositionCode(position string) string {
	p := strings.ToLower(strings.TrimSpace(position))
	for _, pc := range positionCodes {
		for _, m := range pc.match {
			if strings.Contains(p, m) {
				return pc.code
			}
		}
	}
	return "STAFF"
}
