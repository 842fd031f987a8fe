package main

import (
	"context"
	"fmt"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/spf13/cobra"
)

var demoUsers = []struct {
	username string
	bio      string
	posts    []string
}{
	{"alice", "Coffee and climbing", []string{"First light on the crag today", "Anyone up for bouldering on Sunday?"}},
	{"bob", "Writes Go for a living", []string{"Finally shipped the new release"}},
	{"carol", "", []string{"Hello, Pulse!"}},
}

func seedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo users and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := context.Background()
			b, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.migrate(ctx, log); err != nil {
				return err
			}
			svc, err := b.buildServices(ctx, cfg, log)
			if err != nil {
				return err
			}

			n, err := seed(ctx, svc, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d posts for %d users\n", n, len(demoUsers))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "password123", "Password for every demo account")
	return cmd
}

// seed is idempotent for users. Posts are only created for new accounts.
func seed(ctx context.Context, svc *services.Set, password string) (int, error) {
	ids := make([]string, 0, len(demoUsers))
	posts := 0
	for _, demo := range demoUsers {
		req := models.SignupRequest{Username: demo.username, Email: demo.username + "@example.com", Password: password}
		resp, err := svc.Auth.Signup(ctx, req, "")
		if apperror.KindOf(err) == apperror.KindAlreadyExists {
			resp, err = svc.Auth.Login(ctx, models.LoginRequest{Email: req.Email, Password: password})
			if err != nil {
				return posts, fmt.Errorf("log in %s: %w", demo.username, err)
			}
			ids = append(ids, resp.User.ID.Hex())
			continue
		}
		if err != nil {
			return posts, fmt.Errorf("sign up %s: %w", demo.username, err)
		}
		id := resp.User.ID.Hex()
		ids = append(ids, id)

		if demo.bio != "" {
			if _, err := svc.Graph.UpdateProfile(ctx, id, models.UpdateProfileRequest{Bio: demo.bio}, ""); err != nil {
				return posts, fmt.Errorf("update %s: %w", demo.username, err)
			}
		}
		for _, content := range demo.posts {
			if _, err := svc.Posts.Create(ctx, id, content, ""); err != nil {
				return posts, fmt.Errorf("post for %s: %w", demo.username, err)
			}
			posts++
		}
	}

	// Everyone follows the first account.
	for _, id := range ids[1:] {
		err := svc.Graph.Follow(ctx, id, ids[0])
		if err != nil && apperror.KindOf(err) != apperror.KindAlreadyExists {
			return posts, err
		}
	}
	return posts, nil
}
