//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
)

func TestOrderRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewOrderRepo(testPool)

	t.Run("should mark paid exactly once", func(t *testing.T) {
		_, order := seedPlanAndOrder(t)

		now := time.Now()
		ok, err := repo.MarkPaid(ctx, nil, order.ID, "ABCD-EFGH-JKLM", now)
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if !ok {
			t.Fatal("first MarkPaid did not transition the order")
		}

		ok, err = repo.MarkPaid(ctx, nil, order.ID, "NNNN-MMMM-PPPP", now)
		if err != nil {
			t.Fatalf("second MarkPaid errored: %v", err)
		}
		if ok {
			t.Fatal("order transitioned to paid twice")
		}

		got, err := repo.FindByID(ctx, nil, order.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.OrderStatusPaid {
			t.Errorf("status = %q, want paid", got.Status)
		}
		if got.RedemptionCode == nil || *got.RedemptionCode != "ABCD-EFGH-JKLM" {
			t.Error("order must keep the first confirmation's code")
		}
		if got.PaidAt == nil {
			t.Error("paid_at not stamped")
		}
	})

	t.Run("should not cancel a paid order", func(t *testing.T) {
		_, order := seedPlanAndOrder(t)
		if _, err := repo.MarkPaid(ctx, nil, order.ID, "ABCD-EFGH-JKLM", time.Now()); err != nil {
			t.Fatal(err)
		}

		ok, err := repo.MarkCancelled(ctx, nil, order.ID)
		if err != nil {
			t.Fatalf("MarkCancelled errored: %v", err)
		}
		if ok {
			t.Fatal("paid order was cancelled")
		}
	})

	t.Run("should return ErrNotFound for unknown ids", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("should expire only stale pending orders", func(t *testing.T) {
		plan, order := seedPlanAndOrder(t)

		stale, err := model.NewOrder(uuid.NewString(), "old@example.com", plan, 1500, "manual")
		if err != nil {
			t.Fatal(err)
		}
		stale.CreatedAt = time.Now().Add(-80 * time.Hour)
		if err := repo.Save(ctx, nil, stale); err != nil {
			t.Fatal(err)
		}

		n, err := repo.ExpirePendingBefore(ctx, nil, time.Now().Add(-72*time.Hour))
		if err != nil {
			t.Fatalf("ExpirePendingBefore failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expired = %d, want 1", n)
		}

		got, _ := repo.FindByID(ctx, nil, stale.ID)
		if got.Status != model.OrderStatusExpired {
			t.Errorf("stale status = %q, want expired", got.Status)
		}
		got, _ = repo.FindByID(ctx, nil, order.ID)
		if got.Status != model.OrderStatusPending {
			t.Errorf("fresh status = %q, want pending", got.Status)
		}
	})

	t.Run("should list newest first with status filter", func(t *testing.T) {
		plan, first := seedPlanAndOrder(t)

		second, err := model.NewOrder(uuid.NewString(), "second@example.com", plan, 1500, "manual")
		if err != nil {
			t.Fatal(err)
		}
		second.CreatedAt = first.CreatedAt.Add(time.Minute)
		if err := repo.Save(ctx, nil, second); err != nil {
			t.Fatal(err)
		}

		orders, err := repo.List(ctx, nil, model.OrderStatusPending, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("len = %d, want 2", len(orders))
		}
		if orders[0].ID != second.ID {
			t.Error("list is not newest-first")
		}

		paid, err := repo.List(ctx, nil, model.OrderStatusPaid, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(paid) != 0 {
			t.Errorf("paid filter returned %d rows, want 0", len(paid))
		}
	})
}
