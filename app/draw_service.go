package app

import (
	"fmt"

	"fairdraw/adapters/prng"
	"fairdraw/domain/core"
	"fairdraw/domain/draw"
	"fairdraw/internal"
	"fairdraw/ports"
)

// DrawService opens game sessions on top of revealed seeds
type DrawService struct {
	expander ports.Expander
	policy   prng.Policy
	logger   *internal.Logger
}

// NewDrawService creates a draw service. A nil expander selects SHA-256 and an
// empty policy selects prng.DefaultPolicy.
func NewDrawService(expander ports.Expander, policy prng.Policy, logger *internal.Logger) *DrawService {
	if expander == nil {
		expander = prng.DefaultExpander()
	}
	if policy == "" {
		policy = prng.DefaultPolicy
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DrawService{expander: expander, policy: policy, logger: logger}
}

// Policy returns the reduction policy used by new sessions
func (s *DrawService) Policy() prng.Policy {
	return s.policy
}

// ExpanderName returns the hash name used by new sessions
func (s *DrawService) ExpanderName() string {
	return s.expander.Name()
}

// OpenSession binds a new session to seed. The seed must be delivered exactly
// once, before any draw; it fails with core.ErrEmptySeed when degenerate.
func (s *DrawService) OpenSession(seed core.Seed, cfg draw.Config) (*Session, error) {
	stream, err := prng.NewStream(seed, s.expander)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	session := &Session{
		id:     core.NewSessionID(),
		stream: stream,
		policy: s.policy,
		config: cfg,
	}
	s.logger.Trace("session %s opened (hash=%s policy=%s)", session.id, s.expander.Name(), s.policy)
	return session, nil
}

// Session owns one number stream and its draw configuration. It is used
// sequentially by a single game session and is not safe for concurrent use.
type Session struct {
	id     core.SessionID
	stream *prng.Stream
	policy prng.Policy
	config draw.Config
}

// ID returns the session identifier
func (s *Session) ID() core.SessionID {
	return s.id
}

// Seed returns the seed the session is bound to
func (s *Session) Seed() core.Seed {
	return s.stream.Seed()
}

// Consumed returns how many raw words the session has drawn so far
func (s *Session) Consumed() uint64 {
	return s.stream.Counter()
}

// Config returns the session's draw configuration
func (s *Session) Config() draw.Config {
	return s.config
}

// Configure replaces the session's draw configuration
func (s *Session) Configure(cfg draw.Config) {
	s.config = cfg
}

// RequestDraws returns count values, each in [0, rng), in draw order. With
// rng == 0 or count == 0 it fails before consuming any entropy.
func (s *Session) RequestDraws(rng uint64, count uint32) (draw.Result, error) {
	return s.Draw(draw.Line(rng, count))
}

// DrawConfigured draws according to the session's own configuration
func (s *Session) DrawConfigured() (draw.Result, error) {
	req := s.config.Request()
	return s.RequestDraws(req.Range, req.Count)
}

// Draw serves one request shape. The shape is validated before the stream is
// touched, so a rejected request leaves the session unchanged.
func (s *Session) Draw(shape draw.Shape) (draw.Result, error) {
	if err := shape.Validate(); err != nil {
		return draw.Result{}, err
	}

	switch shape.Kind {
	case draw.ShapeLine:
		return s.line(shape.Range, shape.Count, 0)
	case draw.ShapeDice:
		return s.line(shape.Sides, shape.Count, 1)
	case draw.ShapeDeck:
		return s.deck(shape.Size)
	default:
		return draw.Result{}, fmt.Errorf("%w: %q", core.ErrInvalidShape, shape.Kind)
	}
}

func (s *Session) line(rng uint64, count uint32, offset uint64) (draw.Result, error) {
	values := make([]uint64, count)
	for i := range values {
		v, err := prng.Bounded(s.stream, rng, s.policy)
		if err != nil {
			return draw.Result{}, err
		}
		values[i] = v + offset
	}
	return draw.Result{Values: values}, nil
}

// deck returns a Fisher-Yates permutation of 0..size-1.
func (s *Session) deck(size uint32) (draw.Result, error) {
	values := make([]uint64, size)
	for i := range values {
		values[i] = uint64(i)
	}
	for i := len(values) - 1; i > 0; i-- {
		j, err := prng.Bounded(s.stream, uint64(i+1), s.policy)
		if err != nil {
			return draw.Result{}, err
		}
		values[i], values[j] = values[j], values[i]
	}
	return draw.Result{Values: values}, nil
}
