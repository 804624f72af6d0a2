package worker

import (
	"context"
	"errors"
	"testing"

	"budget/internal/core"
)

type fakeMirror struct {
	appended  []core.Transaction
	removed   []string
	appendErr error
	removeErr error
}

func (f *fakeMirror) Append(_ context.Context, tx core.Transaction) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, tx)
	return nil
}

func (f *fakeMirror) Remove(_ context.Context, id string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func validTransaction() core.Transaction {
	return core.Transaction{
		ID:       "ab12cd34",
		Name:     "groceries",
		Amount:   core.Money{Cents: 1500},
		Category: core.Food,
		Type:     core.Expense,
		Date:     core.NewDate(2025, 7, 15),
		Tags:     []string{},
	}
}

func TestHandleCreatedMirrorsTransaction(t *testing.T) {
	fake := &fakeMirror{}
	w := NewMirrorWorker(fake, fake)

	if err := w.HandleCreated(context.Background(), validTransaction()); err != nil {
		t.Fatalf("handle created: %v", err)
	}
	if len(fake.appended) != 1 || fake.appended[0].ID != "ab12cd34" {
		t.Fatalf("appended = %+v", fake.appended)
	}
}

func TestHandleCreatedRejectsInvalidPayload(t *testing.T) {
	fake := &fakeMirror{}
	w := NewMirrorWorker(fake, fake)

	tx := validTransaction()
	tx.Name = ""
	if err := w.HandleCreated(context.Background(), tx); err == nil {
		t.Fatal("expected validation error")
	}
	if len(fake.appended) != 0 {
		t.Fatalf("invalid transaction reached the mirror: %+v", fake.appended)
	}
}

func TestHandleCreatedPropagatesMirrorError(t *testing.T) {
	fake := &fakeMirror{appendErr: errors.New("sheet unavailable")}
	w := NewMirrorWorker(fake, fake)

	if err := w.HandleCreated(context.Background(), validTransaction()); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
}

func TestHandleRemoved(t *testing.T) {
	fake := &fakeMirror{}
	w := NewMirrorWorker(fake, fake)

	if err := w.HandleRemoved(context.Background(), "ab12cd34"); err != nil {
		t.Fatalf("handle removed: %v", err)
	}
	if len(fake.removed) != 1 || fake.removed[0] != "ab12cd34" {
		t.Fatalf("removed = %v", fake.removed)
	}
}

func TestHandleRemovedPropagatesMirrorError(t *testing.T) {
	fake := &fakeMirror{removeErr: errors.New("db locked")}
	w := NewMirrorWorker(fake, fake)

	if err := w.HandleRemoved(context.Background(), "ab12cd34"); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
}
