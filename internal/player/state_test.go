package player

import "testing"

func TestState(t *testing.T) {
	tests := []struct {
		state     State
		name      string
		active    bool
		canPause  bool
		canResume bool
	}{
		{Stopped, "Stopped", false, false, false},
		{Playing, "Playing", true, true, false},
		{Paused, "Paused", true, false, true},
		{State(99), "Unknown", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.state.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.state.CanPause(); got != tt.canPause {
				t.Errorf("CanPause() = %v, want %v", got, tt.canPause)
			}
			if got := tt.state.CanResume(); got != tt.canResume {
				t.Errorf("CanResume() = %v, want %v", got, tt.canResume)
			}
		})
	}
}

func TestMock_StateTransitions(t *testing.T) {
	t.Run("Stopped to Playing via Play", func(t *testing.T) {
		m := NewMock()
		if m.State() != Stopped {
			t.Fatalf("initial state = %v, want Stopped", m.State())
		}

		_ = m.Play("/samples/test.mp3")

		if m.State() != Playing {
			t.Errorf("state after Play = %v, want Playing", m.State())
		}
	})

	t.Run("Playing to Paused via Pause", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")

		m.Pause()

		if m.State() != Paused {
			t.Errorf("state after Pause = %v, want Paused", m.State())
		}
	})

	t.Run("Paused to Playing via Resume", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")
		m.Pause()

		m.Resume()

		if m.State() != Playing {
			t.Errorf("state after Resume = %v, want Playing", m.State())
		}
	})

	t.Run("Playing to Stopped via Stop", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")

		m.Stop()

		if m.State() != Stopped {
			t.Errorf("state after Stop = %v, want Stopped", m.State())
		}
	})

	t.Run("Paused to Stopped via Stop", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")
		m.Pause()

		m.Stop()

		if m.State() != Stopped {
			t.Errorf("state after Stop = %v, want Stopped", m.State())
		}
	})
}

func TestMock_Toggle(t *testing.T) {
	t.Run("Playing to Paused", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")

		m.Toggle()

		if m.State() != Paused {
			t.Errorf("state after Toggle = %v, want Paused", m.State())
		}
	})

	t.Run("Paused to Playing", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")
		m.Pause()

		m.Toggle()

		if m.State() != Playing {
			t.Errorf("state after Toggle = %v, want Playing", m.State())
		}
	})

	t.Run("Stopped remains Stopped", func(t *testing.T) {
		m := NewMock()

		m.Toggle()

		if m.State() != Stopped {
			t.Errorf("state after Toggle = %v, want Stopped", m.State())
		}
	})
}

func TestMock_NoOpTransitions(t *testing.T) {
	t.Run("Stop when Stopped is no-op", func(t *testing.T) {
		m := NewMock()

		m.Stop() // Should not panic

		if m.State() != Stopped {
			t.Errorf("state = %v, want Stopped", m.State())
		}
	})

	t.Run("Pause when Stopped is no-op", func(t *testing.T) {
		m := NewMock()

		m.Pause() // Should not panic

		if m.State() != Stopped {
			t.Errorf("state = %v, want Stopped", m.State())
		}
	})

	t.Run("Resume when Stopped is no-op", func(t *testing.T) {
		m := NewMock()

		m.Resume() // Should not panic

		if m.State() != Stopped {
			t.Errorf("state = %v, want Stopped", m.State())
		}
	})

	t.Run("Pause when Paused is no-op", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")
		m.Pause()

		m.Pause() // Should not panic

		if m.State() != Paused {
			t.Errorf("state = %v, want Paused", m.State())
		}
	})

	t.Run("Resume when Playing is no-op", func(t *testing.T) {
		m := NewMock()
		_ = m.Play("/samples/test.mp3")

		m.Resume() // Should not panic

		if m.State() != Playing {
			t.Errorf("state = %v, want Playing", m.State())
		}
	})
}
