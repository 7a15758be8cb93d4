package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecipeStage is one of the five ordered phases of the guided cereal task.
type RecipeStage int

const (
	StageSetup RecipeStage = iota + 1
	StageMeasureCereal
	StageAddMilk
	StageAddToppings
	StageFinalCheck
)

// stageNames maps each stage to its human-readable name, used in prompts
// and API responses.
var stageNames = map[RecipeStage]string{
	StageSetup:         "Setup",
	StageMeasureCereal: "Measure Cereal",
	StageAddMilk:       "Add Milk",
	StageAddToppings:   "Add Toppings",
	StageFinalCheck:    "Final Check",
}

// Name returns the human-readable stage name.
func (s RecipeStage) Name() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Stage %d", int(s))
}

// Valid reports whether s is one of the five defined stages.
func (s RecipeStage) Valid() bool {
	return s >= StageSetup && s <= StageFinalCheck
}

// ParseStage extracts the stage ordinal from a vision-model "current_step"
// string, which is expected to begin with an integer (e.g. "3 add milk").
// It returns an error for a non-numeric prefix or an ordinal outside 1-5.
func ParseStage(currentStep string) (RecipeStage, error) {
	fields := strings.Fields(strings.TrimSpace(currentStep))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty current_step")
	}
	// Tolerate a trailing separator on the ordinal, e.g. "3: add milk".
	head := strings.TrimRight(fields[0], ".:)")
	ordinal, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("current_step %q has no leading stage ordinal", currentStep)
	}
	stage := RecipeStage(ordinal)
	if !stage.Valid() {
		return 0, fmt.Errorf("stage ordinal %d out of range 1-5", ordinal)
	}
	return stage, nil
}

// RecipeState tracks a session's progress through the cereal task.
type RecipeState struct {
	SessionID         string      `json:"session_id"`
	CurrentStage      RecipeStage `json:"current_stage"`
	LastCompletedStep int         `json:"last_completed_step"`
	WaitingFor        string      `json:"waiting_for"`
	StartTime         time.Time   `json:"start_time"`
	MilkAddedTime     *time.Time  `json:"milk_added_time,omitempty"`
}

// NewRecipeState returns the default state materialized the first time a
// session is referenced.
func NewRecipeState(sessionID string, now time.Time) *RecipeState {
	return &RecipeState{
		SessionID:         sessionID,
		CurrentStage:      StageSetup,
		LastCompletedStep: 0,
		WaitingFor:        "bowl placement",
		StartTime:         now,
	}
}

// ApplyObservation advances the state from a vision observation. The stage
// only moves forward: a stage behind the current one updates the guidance
// text but leaves the stage and step counter untouched. MilkAddedTime is
// stamped the first time the stage reaches Add Milk and never changes after.
func (r *RecipeState) ApplyObservation(stage RecipeStage, nextAction string, now time.Time) {
	if stage > r.CurrentStage {
		r.LastCompletedStep = int(r.CurrentStage)
		r.CurrentStage = stage
	}
	r.WaitingFor = nextAction
	if r.CurrentStage == StageAddMilk && r.MilkAddedTime == nil {
		t := now
		r.MilkAddedTime = &t
	}
}
