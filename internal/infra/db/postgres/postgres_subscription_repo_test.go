//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
)

func TestSubscriptionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewSubscriptionRepo(testPool)

	t.Run("should cancel all active rows of a user in one statement", func(t *testing.T) {
		plan, _ := seedPlanAndOrder(t)

		for i := 0; i < 2; i++ {
			sub, err := model.NewRedeemedSubscription(uuid.NewString(), "user-1", plan, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := repo.Save(ctx, nil, sub); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}
		other, err := model.NewRedeemedSubscription(uuid.NewString(), "user-2", plan, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(ctx, nil, other); err != nil {
			t.Fatal(err)
		}

		n, err := repo.CancelActiveByUser(ctx, nil, "user-1", time.Now())
		if err != nil {
			t.Fatalf("CancelActiveByUser failed: %v", err)
		}
		if n != 2 {
			t.Errorf("cancelled = %d, want 2", n)
		}

		active, err := repo.FindActiveByUser(ctx, nil, "user-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(active) != 0 {
			t.Errorf("user-1 still has %d active rows", len(active))
		}
		active, err = repo.FindActiveByUser(ctx, nil, "user-2")
		if err != nil {
			t.Fatal(err)
		}
		if len(active) != 1 {
			t.Errorf("user-2 active rows = %d, want 1 untouched", len(active))
		}
	})

	t.Run("should roll back activation when the transaction fails", func(t *testing.T) {
		plan, _ := seedPlanAndOrder(t)
		txm := NewTxManager(testPool)

		boom := context.Canceled
		err := txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			sub, err := model.NewRedeemedSubscription(uuid.NewString(), "user-3", plan, nil)
			if err != nil {
				return err
			}
			if err := repo.Save(ctx, tx, sub); err != nil {
				return err
			}
			return boom
		})
		if err == nil {
			t.Fatal("expected the transaction to fail")
		}

		active, err := repo.FindActiveByUser(ctx, nil, "user-3")
		if err != nil {
			t.Fatal(err)
		}
		if len(active) != 0 {
			t.Error("rolled-back subscription is visible")
		}
	})

	t.Run("should append history rows", func(t *testing.T) {
		plan, _ := seedPlanAndOrder(t)

		sub, err := model.NewRedeemedSubscription(uuid.NewString(), "user-4", plan, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(ctx, nil, sub); err != nil {
			t.Fatal(err)
		}
		if err := repo.SaveHistory(ctx, nil, model.HistoryFrom(uuid.NewString(), sub)); err != nil {
			t.Fatalf("SaveHistory failed: %v", err)
		}

		var count int
		if err := testPool.QueryRow(ctx, `SELECT count(*) FROM subscription_history WHERE user_id = 'user-4'`).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("history rows = %d, want 1", count)
		}
	})
}
