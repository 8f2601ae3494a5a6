// internal/notify/nats.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/models"
)

const DefaultSubjectPrefix = "cardhall.games"

var tokenReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

func token(s string) string { return tokenReplacer.Replace(s) }

// StateSubject carries the observer view of every snapshot of a game.
func StateSubject(prefix, gameID string) string {
	return fmt.Sprintf("%s.%s.state", prefix, token(gameID))
}

// PlayerSubject carries the snapshots as seen by one player.
func PlayerSubject(prefix, gameID, playerID string) string {
	return fmt.Sprintf("%s.%s.player.%s", prefix, token(gameID), token(playerID))
}

// EndSubject carries the final results.
func EndSubject(prefix, gameID string) string {
	return fmt.Sprintf("%s.%s.end", prefix, token(gameID))
}

// ConnectNATS dials url with reconnect handling logged through logger.
func ConnectNATS(url string, logger *logrus.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("cardhall"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warnf("Disconnected from NATS: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("Reconnected to NATS at %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// Publisher is a table sink that publishes every snapshot on NATS: once as an observer view
// and once per player with that player's hand revealed.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *logrus.Logger
}

func NewPublisher(nc *nats.Conn, prefix string, logger *logrus.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{nc: nc, prefix: prefix, logger: logger}
}

func (p *Publisher) StateChanged(ctx context.Context, st engine.State) error {
	if err := p.nc.Publish(StateSubject(p.prefix, st.GameID), game.EncodeEvent(game.StateEvent(st, ""))); err != nil {
		return fmt.Errorf("failed to publish state for game %s: %w", st.GameID, err)
	}
	for _, pid := range st.Players {
		subj := PlayerSubject(p.prefix, st.GameID, pid)
		if err := p.nc.Publish(subj, game.EncodeEvent(game.StateEvent(st, pid))); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", subj, err)
		}
	}
	p.logger.WithFields(logrus.Fields{"game": st.GameID, "seq": st.Seq}).Debug("published state to NATS")
	return nil
}

func (p *Publisher) GameFinished(ctx context.Context, gameID string, variant engine.Variant, results models.Results) error {
	subj := EndSubject(p.prefix, gameID)
	if err := p.nc.Publish(subj, game.EncodeEvent(game.EndEvent(gameID, variant, results))); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subj, err)
	}
	// results are the last message of a game; make sure they leave the client buffer
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, writeTimeout)
		defer cancel()
	}
	return p.nc.FlushWithContext(ctx)
}
