package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/routegate/routegate/providers/ai"
)

func TestArrayMemory_AppendAndRead(t *testing.T) {
	memory := New()
	ctx := context.Background()

	memory.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: "one"})
	memory.AppendMessage(ctx, &ai.Message{Role: ai.RoleAssistant, Content: "two"})
	memory.AppendMessage(ctx, nil)

	count, err := memory.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (nil message must be skipped)", count)
	}

	messages, err := memory.AllMessages(ctx)
	if err != nil {
		t.Fatalf("AllMessages failed: %v", err)
	}
	if len(messages) != 2 || messages[0].Content != "one" || messages[1].Content != "two" {
		t.Errorf("messages = %+v", messages)
	}
}

func TestArrayMemory_ReturnsCopies(t *testing.T) {
	memory := New()
	ctx := context.Background()
	memory.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: "original"})

	messages, _ := memory.AllMessages(ctx)
	messages[0].Content = "mutated"

	reread, _ := memory.AllMessages(ctx)
	if reread[0].Content != "original" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestArrayMemory_LastMessages(t *testing.T) {
	memory := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		memory.AppendMessage(ctx, &ai.Message{Content: fmt.Sprintf("m%d", i)})
	}

	last, err := memory.LastMessages(ctx, 2)
	if err != nil {
		t.Fatalf("LastMessages failed: %v", err)
	}
	if len(last) != 2 || last[0].Content != "m3" || last[1].Content != "m4" {
		t.Errorf("last = %+v", last)
	}

	all, _ := memory.LastMessages(ctx, 100)
	if len(all) != 5 {
		t.Errorf("overshoot returned %d messages, want 5", len(all))
	}

	none, _ := memory.LastMessages(ctx, 0)
	if none == nil || len(none) != 0 {
		t.Errorf("n=0 returned %v", none)
	}
}

func TestArrayMemory_ClearMessages(t *testing.T) {
	memory := New()
	ctx := context.Background()
	memory.AppendMessage(ctx, &ai.Message{Content: "x"})

	memory.ClearMessages(ctx)

	count, _ := memory.Count(ctx)
	if count != 0 {
		t.Errorf("count after clear = %d", count)
	}
}

func TestArrayMemory_ConcurrentAppends(t *testing.T) {
	memory := New()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			memory.AppendMessage(ctx, &ai.Message{Content: fmt.Sprintf("m%d", i)})
			memory.AllMessages(ctx)
		}(i)
	}
	wg.Wait()

	count, _ := memory.Count(ctx)
	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}
