package shell

import "testing"

func TestNavigatorStartsOnTalk(t *testing.T) {
	n := NewNavigator()
	if n.Active() != Talk {
		t.Fatalf("expected talk, got %s", n.Active())
	}
	assertSingleActive(t, n, Talk)
}

func TestSelectActivatesExactlyOne(t *testing.T) {
	n := NewNavigator()
	for _, dest := range Destinations() {
		if got := n.Select(string(dest)); got != dest {
			t.Fatalf("Select(%s) returned %s", dest, got)
		}
		assertSingleActive(t, n, dest)
	}
}

func TestSelectUnknownFallsBackToTalk(t *testing.T) {
	n := NewNavigator()
	n.Select("mood")
	if got := n.Select("settings"); got != Talk {
		t.Fatalf("expected fallback to talk, got %s", got)
	}
	assertSingleActive(t, n, Talk)
}

func TestParseIsCaseInsensitive(t *testing.T) {
	if d, ok := Parse(" Journal "); !ok || d != Journal {
		t.Fatalf("unexpected parse %s %v", d, ok)
	}
}

func TestNextWraps(t *testing.T) {
	n := NewNavigator()
	if got := n.Next(-1); got != Progress {
		t.Fatalf("expected wrap to progress, got %s", got)
	}
	if got := n.Next(1); got != Talk {
		t.Fatalf("expected wrap to talk, got %s", got)
	}
	if got := n.Next(2); got != Mood {
		t.Fatalf("expected mood, got %s", got)
	}
}

func assertSingleActive(t *testing.T, n *Navigator, want Destination) {
	t.Helper()
	tabs := n.Tabs()
	if len(tabs) != 4 {
		t.Fatalf("expected 4 tabs, got %d", len(tabs))
	}
	active := 0
	for _, tab := range tabs {
		if tab.Active {
			active++
			if tab.Destination != want {
				t.Fatalf("wrong active tab %s", tab.Destination)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active tab, got %d", active)
	}
}
