package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"wordmate-subscription/internal/config"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
	pg "wordmate-subscription/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	planRepo := pg.NewPlanRepo(pool)

	// If plans already exist, do nothing
	plans, err := planRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s [%s/%s] %d %s\n", p.Name, p.Tier, p.Period, p.PriceCents, p.Currency)
		}
		return
	}

	// The five plan/period combinations of the catalog
	seed := []struct {
		ID     string
		Tier   model.Tier
		Name   string
		Period model.BillingPeriod
		Price  int64
	}{
		{"premium_monthly", model.TierPremium, "高级会员", model.PeriodMonthly, 1500},
		{"premium_yearly", model.TierPremium, "高级会员", model.PeriodYearly, 9900},
		{"flagship_monthly", model.TierFlagship, "旗舰会员", model.PeriodMonthly, 2900},
		{"flagship_yearly", model.TierFlagship, "旗舰会员", model.PeriodYearly, 19900},
		{"flagship_lifetime", model.TierFlagshipLifetime, "旗舰终身会员", model.PeriodLifetime, 39900},
	}

	for _, s := range seed {
		p, err := model.NewPlan(s.ID, s.Tier, s.Name, s.Period, s.Price, "CNY")
		if err != nil {
			log.Fatalf("build plan %q: %v", s.ID, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.ID, err)
		}
		fmt.Printf("seeded: %s [%s/%s] %d CNY\n", p.Name, p.Tier, p.Period, p.PriceCents)
	}

	fmt.Println("seeding complete.")
}
