package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/wordbot/pkg/models"
)

func TestTrackerFreezesTotalOnce(t *testing.T) {
	var tr Tracker

	tr.OnSessionStart(0)
	_, total := tr.Progress()
	assert.Zero(t, total, "an empty queue does not freeze the total")

	tr.OnSessionStart(3)
	tr.OnSessionStart(5)
	_, total = tr.Progress()
	assert.Equal(t, 3, total)

	tr.Reset()
	tr.OnSessionStart(5)
	completed, total := tr.Progress()
	assert.Equal(t, 5, total)
	assert.Zero(t, completed)
}

func TestTrackerCountsNonForgot(t *testing.T) {
	var tr Tracker
	tr.OnSessionStart(2)

	tr.OnOutcome(models.RatingForgot)
	tr.OnOutcome(models.RatingHard)
	tr.OnOutcome(models.RatingForgot)
	tr.OnOutcome(models.RatingEasy)
	tr.OnOutcome(models.RatingGood)

	completed, total := tr.Progress()
	assert.Equal(t, 3, completed)
	assert.Equal(t, 2, total, "completed may exceed the watermark")
}
