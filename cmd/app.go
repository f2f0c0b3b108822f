package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-fuel-audit/internal/config"
	"github.com/ukydev/fleet-fuel-audit/internal/db"
	"github.com/ukydev/fleet-fuel-audit/internal/models"
	"github.com/ukydev/fleet-fuel-audit/internal/notify"
	"github.com/ukydev/fleet-fuel-audit/internal/reconcile"
	"github.com/ukydev/fleet-fuel-audit/internal/upstream"
)

// app holds the wired engine and submission service for one process.
type app struct {
	engine    *reconcile.Engine
	submitter *reconcile.Submitter
	journal   *db.MongoDecisionJournal
	loc       *time.Location
	closers   []func(context.Context) error
}

func newApp(ctx context.Context, c *config.Config) (*app, error) {
	loc, err := c.Reconcile.Location()
	if err != nil {
		return nil, err
	}

	client := upstream.New(c.Upstream.FuelAPIBaseURL, c.Upstream.GPSAPIBaseURL,
		upstream.WithTimeout(c.Upstream.Timeout()),
		upstream.WithGPSUserID(c.Upstream.GPSUserID),
		upstream.WithGPSTypeFT(c.Upstream.GPSTypeFT),
	)

	a := &app{
		engine: reconcile.NewEngine(client, client, client, log.StandardLogger()),
		loc:    loc,
	}

	var sink reconcile.DecisionSink
	switch c.Sink.Driver {
	case config.SinkHTTP:
		sink = client
	case config.SinkMongo:
		mc, err := db.ConnectMongo(ctx, c.Mongo.URI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, mc.Disconnect)
		journal := &db.MongoDecisionJournal{Collection: mc.Database(c.Mongo.Database).Collection(c.Mongo.Collection)}
		if err := journal.EnsureIndexes(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
		sink = journal
		a.journal = journal
		log.WithFields(log.Fields{
			"database":   c.Mongo.Database,
			"collection": c.Mongo.Collection,
		}).Info("Recording decisions in MongoDB")
	default:
		return nil, eris.Errorf("unknown sink driver %q", c.Sink.Driver)
	}

	var opts []reconcile.SubmitterOption
	if c.MQTT.Enabled {
		pub, mqttClient, err := notify.Connect(c.MQTT.Broker, c.MQTT.ClientID, c.MQTT.Topic, log.StandardLogger())
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error {
			mqttClient.Disconnect(250)
			return nil
		})
		opts = append(opts, reconcile.WithNotifier(pub))
		log.WithField("broker", c.MQTT.Broker).Info("Audit notifications enabled")
	}

	a.submitter = reconcile.NewSubmitter(sink, log.StandardLogger(), opts...)
	return a, nil
}

// window returns the reconciliation day for date, or today when blank.
func (a *app) window(date string) (models.TimeWindow, error) {
	return reconcile.WindowForDate(date, time.Now().In(a.loc))
}

// Close releases connections opened by newApp.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.WithError(err).Warn("Failed to close resource")
		}
	}
}
