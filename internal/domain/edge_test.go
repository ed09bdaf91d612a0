package domain

import (
	"testing"
)

func TestNewLink(t *testing.T) {
	t.Run("normalizes endpoints", func(t *testing.T) {
		link := NewLink("node2", "node1")

		if link.A != "node1" {
			t.Errorf("expected A 'node1', got %s", link.A)
		}
		if link.B != "node2" {
			t.Errorf("expected B 'node2', got %s", link.B)
		}
		if link.ID == "" {
			t.Error("expected ID to be generated")
		}
	})
}

func TestLinkGenerateID(t *testing.T) {
	t.Run("generates consistent ID", func(t *testing.T) {
		link1 := NewLink("node1", "node2")
		link2 := NewLink("node1", "node2")

		if link1.ID != link2.ID {
			t.Error("expected same endpoints to generate same ID")
		}
	})

	t.Run("reversed endpoints generate same ID", func(t *testing.T) {
		link1 := NewLink("node1", "node2")
		link2 := NewLink("node2", "node1")

		if link1.ID != link2.ID {
			t.Error("expected reversed endpoints to generate same ID")
		}
	})

	t.Run("different endpoints generate different IDs", func(t *testing.T) {
		link1 := NewLink("node1", "node2")
		link2 := NewLink("node1", "node3")

		if link1.ID == link2.ID {
			t.Error("expected different endpoints to generate different IDs")
		}
	})

	t.Run("generates short hash", func(t *testing.T) {
		link := NewLink("a", "b")
		// 8 bytes = 16 hex characters
		if len(link.ID) != 16 {
			t.Errorf("expected 16 character ID, got %d characters", len(link.ID))
		}
	})
}

func TestLinkOther(t *testing.T) {
	link := NewLink("a", "b")

	if got := link.Other("a"); got != "b" {
		t.Errorf("Other(a) = %q, want b", got)
	}
	if got := link.Other("b"); got != "a" {
		t.Errorf("Other(b) = %q, want a", got)
	}
	if got := link.Other("c"); got != "" {
		t.Errorf("Other(c) = %q, want empty", got)
	}
}

func TestDeriveLinks(t *testing.T) {
	t.Run("emits each undirected connection once", func(t *testing.T) {
		nodes := []Node{
			{ID: "sw", Connections: []string{"v1", "v2"}},
			{ID: "v1", Connections: []string{"sw"}},
			{ID: "v2", Connections: []string{"sw"}},
		}

		links := DeriveLinks(nodes)
		if len(links) != 2 {
			t.Fatalf("expected 2 links, got %d", len(links))
		}
		if links[0] != NewLink("sw", "v1") {
			t.Errorf("unexpected first link %+v", links[0])
		}
		if links[1] != NewLink("sw", "v2") {
			t.Errorf("unexpected second link %+v", links[1])
		}
	})

	t.Run("skips connections to absent nodes", func(t *testing.T) {
		nodes := []Node{
			{ID: "sw", Connections: []string{"v1", "gone"}},
			{ID: "v1", Connections: []string{"sw"}},
		}

		links := DeriveLinks(nodes)
		if len(links) != 1 || links[0] != NewLink("sw", "v1") {
			t.Errorf("unexpected links %+v", links)
		}
		if got := DeriveLinks(nodes[:1]); len(got) != 0 {
			t.Errorf("expected no links for a lone node, got %+v", got)
		}
	})

	t.Run("empty canvas yields empty slice", func(t *testing.T) {
		links := DeriveLinks(nil)
		if links == nil || len(links) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", links)
		}
	})
}
