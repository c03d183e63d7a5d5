package services

// Option is a selectable value for the interview setup screen.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var roleLabels = map[string]string{
	"nurse":      "Registered Nurse",
	"doctor":     "Medical Doctor",
	"pharmacist": "Pharmacist",
	"therapist":  "Physical Therapist",
	"technician": "Medical Technician",
}

var levelLabels = map[string]string{
	"entry":  "entry-level",
	"mid":    "mid-level",
	"senior": "senior-level",
}

var RoleOptions = []Option{
	{Value: "nurse", Label: "Registered Nurse"},
	{Value: "doctor", Label: "Medical Doctor"},
	{Value: "pharmacist", Label: "Pharmacist"},
	{Value: "therapist", Label: "Physical Therapist"},
	{Value: "technician", Label: "Medical Technician"},
}

var LevelOptions = []Option{
	{Value: "entry", Label: "Entry Level"},
	{Value: "mid", Label: "Mid Level"},
	{Value: "senior", Label: "Senior Level"},
}

// RoleLabel returns the display name for a role key, or the key itself when unknown.
func RoleLabel(role string) string {
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return role
}

// LevelLabel returns the adjective form of a level key ("entry-level").
func LevelLabel(level string) string {
	if l, ok := levelLabels[level]; ok {
		return l
	}
	return level
}

func IsKnownRole(role string) bool {
	_, ok := roleLabels[role]
	return ok
}

func IsKnownLevel(level string) bool {
	_, ok := levelLabels[level]
	return ok
}
