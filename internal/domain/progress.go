package domain

// StageStatus is one entry of an order's per-stage progress breakdown
type StageStatus struct {
	ID    StageID `json:"id"`
	Label string  `json:"label"`
	Index int     `json:"index"`
	Done  bool    `json:"done"`
}

// StageProgress summarizes how far an order has moved through the pipeline
type StageProgress struct {
	CurrentStageIndex int           `json:"currentStageIndex"`
	CurrentStageID    StageID       `json:"currentStageId"`
	CurrentStageLabel string        `json:"currentStageLabel"`
	CompletedStages   int           `json:"completedStages"`
	TotalStages       int           `json:"totalStages"`
	Stages            []StageStatus `json:"stages"`
}

// ComputeStageProgress walks the stage registry in order and finds the
// furthest completed prefix of the pipeline. The current stage is the
// first stage that is not done; a fully completed order reports Final
// Delivery as its current stage.
//
// This is a reporting function, not a validator: a gap (a later stage
// done while an earlier one is not) is summarized, never rejected.
// The scan stops at the first not-done stage regardless of what
// follows.
func ComputeStageProgress(o *Order) StageProgress {
	stages := make([]StageStatus, NumStages)
	for i, def := range Pipeline {
		stages[i] = StageStatus{
			ID:    def.ID,
			Label: def.Label,
			Index: i,
			Done:  o.StageDone(i),
		}
	}

	currentIndex := 0
	completed := 0
	for i := range stages {
		if !stages[i].Done {
			currentIndex = i
			break
		}
		completed = i + 1
		currentIndex = i + 1
	}
	if currentIndex >= NumStages {
		currentIndex = NumStages - 1
	}

	current := Pipeline[currentIndex]
	return StageProgress{
		CurrentStageIndex: currentIndex,
		CurrentStageID:    current.ID,
		CurrentStageLabel: current.Label,
		CompletedStages:   completed,
		TotalStages:       NumStages,
		Stages:            stages,
	}
}
