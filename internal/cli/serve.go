package cli

import (
	"os"
	"os/signal"
	"syscall"

	"curator/internal/modkit/module"
	phttp "curator/internal/platform/net/http"
	"curator/internal/services/api"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"

	"github.com/spf13/cobra"
)

func newServeCommand(g *Globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only status api until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setEnv("CURATOR_API_ADDR", addr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			// no processor: the api only reads the ledger
			m, err := a.maintenance(ctx, nil)
			if err != nil {
				return err
			}

			cat := module.MustPortsOf[catalog.Catalog](a.catalog)
			ledger := module.MustPortsOf[domain.Ledger](m)

			srv := phttp.NewServer(a.cfg)
			api.Mount(srv.Router(), a.deps, cat, ledger, api.FromConfig(a.cfg))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $CURATOR_API_ADDR or :$CURATOR_API_PORT)")
	return cmd
}
