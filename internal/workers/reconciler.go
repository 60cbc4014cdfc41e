package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"riffraff/internal/platform/models"
)

type UserLister interface {
	ListWithoutOrganization(ctx context.Context, createdBefore, afterID int64, limit int) ([]*models.User, error)
}

type DefaultOrganizationCreator interface {
	CreateDefaultOrganization(ctx context.Context, user *models.User) (*models.Organization, error)
}

// Reconciler gives every user that administers no organization their
// default one. It repairs registrations whose background task was dropped
// or failed.
type Reconciler struct {
	users UserLister
	orgs  DefaultOrganizationCreator

	// Grace leaves recent registrations to their own background task.
	Grace     time.Duration
	BatchSize int
	now       func() time.Time
}

func NewReconciler(users UserLister, orgs DefaultOrganizationCreator) *Reconciler {
	return &Reconciler{
		users:     users,
		orgs:      orgs,
		Grace:     time.Minute,
		BatchSize: 100,
		now:       time.Now,
	}
}

// Run performs one pass and returns how many organizations it created.
// The pass pages through every pending user by id, so users that keep
// failing do not hide the ones after them.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.Grace).Unix()

	var afterID int64
	created := 0
	for {
		users, err := r.users.ListWithoutOrganization(ctx, cutoff, afterID, r.BatchSize)
		if err != nil {
			return created, err
		}

		for _, user := range users {
			if err := ctx.Err(); err != nil {
				return created, err
			}
			afterID = user.ID

			org, err := r.orgs.CreateDefaultOrganization(ctx, user)
			if err != nil {
				log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create default organization")
				continue
			}
			log.Info().Int64("user_id", user.ID).Int64("organization_id", org.ID).Msg("created missing default organization")
			created++
		}

		if len(users) == 0 || len(users) < r.BatchSize {
			return created, nil
		}
	}
}

// Loop runs a pass immediately and then every interval until ctx ends.
func (r *Reconciler) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.runOnce(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("reconciler stopping")
			return
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	created, err := r.Run(passCtx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile pass failed")
		return
	}
	log.Info().Int("created", created).Msg("reconcile pass completed")
}
