package cli

import (
	"fmt"
	"time"

	authdto "smartrfq/internal/auth/dto"
	authUsecase "smartrfq/internal/auth/usecase"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCommand(v *viper.Viper) *cobra.Command {
	var (
		req authdto.DevTokenRequest
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development identity token signed with IDENTITY_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			token, err := authUsecase.MintToken(cfg.IdentityJWTSecret, cfg.IdentityIssuer, req, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Subject, "subject", "", "Identity subject (defaults to a random id)")
	f.StringVar(&req.Email, "email", "dev@smartrfq.local", "Email claim")
	f.StringVar(&req.Name, "name", "Developer", "Name claim")
	f.StringVar(&req.OrgID, "org", "", "Organization id")
	f.StringVar(&req.Role, "role", "admin", "Organization role")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
