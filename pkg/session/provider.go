package session

import (
	"context"
	"sync"

	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// Fetcher obtiene el usuario autenticado (GET /api/auth/me).
type Fetcher interface {
	FetchMe(ctx context.Context) (*User, error)
}

// Provider guarda el estado de sesión y lo expone a varios lectores.
type Provider struct {
	mu      sync.RWMutex
	state   State
	fetcher Fetcher
	log     *logger.Logger
}

// NewProvider crea un provider en el estado inicial.
func NewProvider(fetcher Fetcher, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{state: Initial(), fetcher: fetcher, log: log}
}

// State devuelve una copia del estado actual.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Dispatch aplica una acción al estado.
func (p *Provider) Dispatch(t ActionType, payload *User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, err := Reduce(p.state, Action{Type: t, Payload: payload})
	if err != nil {
		return err
	}
	p.state = next
	return nil
}

// Load hidrata la sesión una vez. Si la consulta falla se registra el error y la sesión
// queda sin autenticar; en cualquier caso la carga termina con STOP_LOADING.
func (p *Provider) Load(ctx context.Context) {
	defer func() {
		_ = p.Dispatch(ActionStopLoading, nil)
	}()

	user, err := p.fetcher.FetchMe(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("session: no se pudo cargar el usuario")
		return
	}
	_ = p.Dispatch(ActionLogin, user)
}
