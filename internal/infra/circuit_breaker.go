package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CBState is the position of a CircuitBreaker.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen means the call was not attempted.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// SuccessThreshold consecutive half-open successes close it again.
	SuccessThreshold int
	// OpenTimeout is how long the breaker rejects calls before trying one.
	OpenTimeout time.Duration
}

// DefaultCBConfig is used for the SMTP relay and the notification webhook.
func DefaultCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: name, FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

// CircuitBreaker guards one outbound dependency. While half-open a single
// trial call is in flight at a time; concurrent callers get ErrCircuitOpen.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CBState
	falhas   int
	sucessos int
	reabreEm time.Time
	emTeste  bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) Name() string { return cb.cfg.Name }

// State reports the current position, moving open to half-open once
// OpenTimeout has passed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expirar()
	return cb.state
}

// Execute calls fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.expirar()
	switch {
	case cb.state == CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen && cb.emTeste:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen:
		cb.emTeste = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.emTeste = false
	if err != nil {
		cb.registrarFalha()
	} else {
		cb.registrarSucesso()
	}
	return err
}

// caller holds mu
func (cb *CircuitBreaker) expirar() {
	if cb.state == CBOpen && !cb.now().Before(cb.reabreEm) {
		cb.mudar(CBHalfOpen)
	}
}

// caller holds mu
func (cb *CircuitBreaker) registrarFalha() {
	cb.sucessos = 0
	cb.falhas++
	if cb.state == CBHalfOpen || cb.falhas >= cb.cfg.FailureThreshold {
		cb.reabreEm = cb.now().Add(cb.cfg.OpenTimeout)
		cb.mudar(CBOpen)
	}
}

// caller holds mu
func (cb *CircuitBreaker) registrarSucesso() {
	cb.falhas = 0
	if cb.state != CBHalfOpen {
		return
	}
	cb.sucessos++
	if cb.sucessos >= cb.cfg.SuccessThreshold {
		cb.mudar(CBClosed)
	}
}

// caller holds mu
func (cb *CircuitBreaker) mudar(para CBState) {
	if cb.state == para {
		return
	}
	ev := log.Info()
	if para == CBOpen {
		ev = log.Warn().Int("falhas", cb.falhas)
	}
	ev.Str("breaker", cb.cfg.Name).Str("de", cb.state.String()).Str("para", para.String()).Msg("circuit breaker")
	cb.state = para
	if para != CBOpen {
		cb.falhas = 0
	}
	if para != CBHalfOpen {
		cb.sucessos = 0
	}
}
