package companion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kasuganosora/lifeos/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	MinWisdom = 5
	MaxWisdom = 25

	maxNameLen      = 80
	maxTextLen      = 500
	maxObjectiveLen = 120
	maxObjectives   = 12
)

var (
	ErrInvalidPlan     = errors.New("companion: invalid quest plan")
	ErrInvalidAnalysis = errors.New("companion: invalid analysis")
)

const planSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["isQuestPlan"],
  "properties": {
    "isQuestPlan": {"type": "boolean"},
    "questName": {"type": "string"},
    "questDescription": {"type": "string"},
    "questPurpose": {"type": "string"},
    "objectives": {"type": "array", "items": {"type": "string"}},
    "responseText": {"type": "string"}
  },
  "if": {"properties": {"isQuestPlan": {"const": true}}},
  "then": {
    "required": ["questName", "objectives"],
    "properties": {
      "questName": {"minLength": 1},
      "objectives": {"minItems": 1}
    }
  }
}`

const analysisSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["wisdomAward", "briefSummary"],
  "properties": {
    "wisdomAward": {"type": "number", "exclusiveMinimum": 0},
    "briefSummary": {"type": "string"}
  }
}`

var (
	planSchema     = jsonschema.MustCompileString("lifeos://quest-plan.json", planSchemaJSON)
	analysisSchema = jsonschema.MustCompileString("lifeos://analysis.json", analysisSchemaJSON)
)

type planEnvelope struct {
	IsQuestPlan      bool     `json:"isQuestPlan"`
	QuestName        string   `json:"questName"`
	QuestDescription string   `json:"questDescription"`
	QuestPurpose     string   `json:"questPurpose"`
	Objectives       []string `json:"objectives"`
	ResponseText     string   `json:"responseText"`
}

// Analysis is a graded chronicle entry.
type Analysis struct {
	Wisdom  int
	Summary string
}

func validate(s *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}

// ValidatePlan checks a structured assistant answer and returns the
// sanitised plan it proposes.
func ValidatePlan(raw []byte) (model.QuestPlan, error) {
	if err := validate(planSchema, raw); err != nil {
		return model.QuestPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	var env planEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.QuestPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if !env.IsQuestPlan {
		return model.QuestPlan{}, fmt.Errorf("%w: not a quest plan", ErrInvalidPlan)
	}
	return sanitize(env)
}

func sanitize(env planEnvelope) (model.QuestPlan, error) {
	p := model.QuestPlan{
		Name:        clip(env.QuestName, maxNameLen),
		Description: clip(env.QuestDescription, maxTextLen),
		Purpose:     clip(env.QuestPurpose, maxTextLen),
		Objectives:  []string{},
	}
	for _, o := range env.Objectives {
		if o = clip(o, maxObjectiveLen); o != "" && len(p.Objectives) < maxObjectives {
			p.Objectives = append(p.Objectives, o)
		}
	}
	if p.Name == "" {
		return model.QuestPlan{}, fmt.Errorf("%w: blank name", ErrInvalidPlan)
	}
	if len(p.Objectives) == 0 {
		return model.QuestPlan{}, fmt.Errorf("%w: no objectives", ErrInvalidPlan)
	}
	return p, nil
}

// clip trims s and cuts it to at most n runes.
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// ParseReply interprets the raw text of a chat answer. Plain text and
// JSON that is not a plan come back as text. A plan that fails validation
// degrades to its response text and is reported through err.
func ParseReply(text string) (Reply, error) {
	text = strings.TrimSpace(text)
	var env planEnvelope
	if !strings.HasPrefix(text, "{") || json.Unmarshal([]byte(text), &env) != nil {
		return Reply{Text: text}, nil
	}
	fallback := env.ResponseText
	if fallback == "" {
		fallback = text
	}
	if !env.IsQuestPlan {
		return Reply{Text: fallback}, nil
	}
	plan, err := ValidatePlan([]byte(text))
	if err != nil {
		return Reply{Text: fallback}, err
	}
	return Reply{Text: fallback, Plan: &plan}, nil
}

// ParseAnalysis reads a chronicle grade. The award is rounded and clamped
// to the allowed wisdom range.
func ParseAnalysis(text string) (Analysis, error) {
	raw := []byte(strings.TrimSpace(text))
	if err := validate(analysisSchema, raw); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	var v struct {
		WisdomAward  float64 `json:"wisdomAward"`
		BriefSummary string  `json:"briefSummary"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	w := int(math.Round(v.WisdomAward))
	return Analysis{
		Wisdom:  min(max(w, MinWisdom), MaxWisdom),
		Summary: clip(v.BriefSummary, maxTextLen),
	}, nil
}
