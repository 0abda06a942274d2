package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavedeck/internal/playback"
)

// snapshotMsg carries a snapshot together with the subscription it came
// from, so snapshots of a route that was left can be dropped.
type snapshotMsg struct {
	sub  *playback.Subscription
	snap playback.Snapshot
}

// subscriptionDoneMsg reports that a subscription was closed.
type subscriptionDoneMsg struct {
	sub *playback.Subscription
}

// levelsMsg triggers a refresh of the spectrum strip.
type levelsMsg time.Time

// watch waits for the next snapshot on sub.
func watch(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case snap := <-sub.Changed:
			return snapshotMsg{sub: sub, snap: snap}
		case <-sub.Done:
			return subscriptionDoneMsg{sub: sub}
		}
	}
}

func levelsTick() tea.Cmd {
	return tea.Tick(levelsInterval, func(t time.Time) tea.Msg {
		return levelsMsg(t)
	})
}
