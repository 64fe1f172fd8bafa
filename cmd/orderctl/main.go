// orderctl hidrata la sesión contra /api/auth/me y lista los pedidos de la API.
//
// Uso: ORDERCTL_TOKEN=<jwt> go run ./cmd/orderctl [base-url]
// base-url por defecto: http://localhost:8080
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/pkg/logger"
	"github.com/jhoicas/pedidos-api/pkg/session"
)

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}
	log := logger.New(logger.Config{Env: "development", Level: os.Getenv("LOG_LEVEL"), Output: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fetcher := session.NewHTTPFetcher(baseURL, os.Getenv("ORDERCTL_TOKEN"))
	provider := session.NewProvider(fetcher, log.Component("session"))
	provider.Load(ctx)

	st := provider.State()
	if !st.Authenticated {
		fmt.Fprintln(os.Stderr, "Sesión no autenticada: revise ORDERCTL_TOKEN")
		os.Exit(1)
	}
	fmt.Printf("Usuario: %s (%s) rol=%s\n\n", st.User.Fullname, st.User.Username, st.User.Role)

	var list []dto.OrderResponse
	if err := fetcher.GetJSON(ctx, "/api/orders", &list); err != nil {
		fmt.Fprintf(os.Stderr, "Listar pedidos: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REMISIÓN\tFECHA\tLÍNEAS\tUNIDADES\tPEDIDO")
	for _, o := range list {
		var units int64
		for _, c := range o.Carts {
			units += c.ProductQuantity
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			nonEmpty(o.ReferenceNumber, "-"), o.CreatedAt.Local().Format("2006-01-02 15:04"), len(o.Carts), units, o.ID)
	}
	w.Flush()
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
