package main

import (
	"context"
	"fmt"
	"time"

	"github.com/voidshard/keel/pkg/worker"
)

type researchParams struct {
	Topic     string `json:"topic"`
	Steps     int    `json:"steps"`
	StepDelay string `json:"step_delay"`
}

type researchState struct {
	Done  int      `json:"done"`
	Notes []string `json:"notes"`
}

// research is a demo job handler. It works through a number of steps,
// checkpointing after each, so it can be paused & resumed part way.
func research(ctx context.Context, j *worker.Job) error {
	p := &researchParams{Steps: 5, StepDelay: "2s"}
	err := j.DecodeParams(p)
	if err != nil {
		return j.Fail("bad params: %v", err)
	}
	if p.Steps <= 0 {
		return j.Fail("steps must be positive")
	}
	delay, err := time.ParseDuration(p.StepDelay)
	if err != nil {
		return j.Fail("bad step_delay: %v", err)
	}

	st := &researchState{}
	if _, err := j.ResumeState(st); err != nil {
		return err
	}

	for st.Done < p.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		st.Done++
		st.Notes = append(st.Notes, fmt.Sprintf("looked into %s (%d/%d)", p.Topic, st.Done, p.Steps))
		progress := st.Done * 100 / p.Steps

		err = j.SaveCheckpoint(ctx, fmt.Sprintf("step-%d", st.Done), progress, st)
		if err != nil {
			return err
		}
		err = j.Report(ctx, progress, st.Notes[len(st.Notes)-1])
		if err != nil {
			return err
		}
	}

	return j.Complete(map[string]interface{}{"topic": p.Topic, "notes": st.Notes})
}
