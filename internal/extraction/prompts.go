package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/invopop/jsonschema"
)

// structuredSchema documents the reply expected by Extract. It only feeds
// the prompt; replies are decoded into a loose string bag.
type structuredSchema struct {
	Category         string `json:"category" jsonschema:"enum=PLUMBING,enum=ELECTRICAL,enum=RAGGING,enum=CARPENTRY,enum=GENERAL"`
	SubCategory      string `json:"sub_category" jsonschema:"description=Short label such as Tap Leakage or Fan Not Working"`
	SpecificCategory string `json:"specific_category"`
	Block            string `json:"block" jsonschema:"description=Hostel block letter or name"`
	RoomNo           string `json:"room_no"`
	PriorityLevel    string `json:"priority_level" jsonschema:"enum=LOW,enum=MEDIUM,enum=HIGH,enum=CRITICAL"`
	MessageType      string `json:"message_type" jsonschema:"enum=GRIEVANCE,enum=ASSISTANCE,enum=ENQUIRY,enum=FEEDBACK,enum=POSITIVE_FEEDBACK"`
	RoomType         string `json:"room_type" jsonschema:"enum=Single,enum=Double"`
	BuildingCode     string `json:"building_code"`
	SubBlock         string `json:"sub_block"`
}

// scoredSchema documents the reply expected by ExtractScored.
type scoredSchema struct {
	Category          string `json:"category" jsonschema:"enum=PLUMBING,enum=ELECTRICAL,enum=RAGGING,enum=CARPENTRY"`
	SubCategory       string `json:"subCategory"`
	RoomNo            string `json:"roomNo"`
	Block             string `json:"block"`
	RoomType          string `json:"roomType" jsonschema:"enum=Single,enum=Double"`
	PriorityLevel     int    `json:"priorityLevel" jsonschema:"minimum=1,maximum=10"`
	AssignedTeam      string `json:"assignedTeam"`
	PreferredTimeSlot string `json:"preferredTimeSlot"`
}

var (
	promptsOnce      sync.Once
	structuredPrompt string
	scoredPrefix     string
)

func schemaJSON(v interface{}) string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	data, err := json.MarshalIndent(reflector.Reflect(v), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("reflect schema: %v", err))
	}
	return string(data)
}

func buildPrompts() {
	structuredPrompt = "You are an assistant that converts hostel complaint descriptions into JSON. " +
		"Return ONLY valid JSON with these keys and no extra text: " +
		"category, sub_category, specific_category, block, room_no, priority_level, message_type, " +
		"room_type, building_code, sub_block. " +
		"Use UPPERCASE for category and message_type. " +
		"Allowed category values: " + joinValues(models.Categories) + ". " +
		"Allowed message_type values: " + joinValues(models.MessageTypes) + ". " +
		"Allowed priority_level values: " + joinValues(models.PriorityLevels) + ". " +
		"Use null if a field cannot be inferred.\n\n" +
		"JSON schema:\n" + schemaJSON(&structuredSchema{})

	scoredPrefix = "Return ONLY valid JSON matching this exact schema (no markdown, no explanation, no extra keys):\n" +
		schemaJSON(&scoredSchema{}) + "\n\n" +
		"priorityLevel is an integer from 1 (cosmetic) to 10 (safety hazard).\n\n" +
		"Description:\n"
}

// StructuredPrompt is the system instruction for Extract.
func StructuredPrompt() string {
	promptsOnce.Do(buildPrompts)
	return structuredPrompt
}

// ScoredPrompt renders the ExtractScored prompt for one description.
func ScoredPrompt(description string) string {
	promptsOnce.Do(buildPrompts)
	return scoredPrefix + description
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
