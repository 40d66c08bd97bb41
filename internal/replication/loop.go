package replication

import (
	"time"

	"github.com/sirupsen/logrus"

	"osm2rdf.sophox.org/internal/envconfig"
	"osm2rdf.sophox.org/internal/obslog"
	"osm2rdf.sophox.org/internal/osmhandler"
	"osm2rdf.sophox.org/internal/osmsource"
	"osm2rdf.sophox.org/internal/sparqlpipeline"
)

// Loop drives the replication main loop: poll, fetch, handle, flush,
// advance. Advancing the sequence id is only committed after a
// successful SPARQL flush, giving exactly-once visible effect per diff.
type Loop struct {
	Server  *Server
	Sink    *sparqlpipeline.Sink
	Handler *osmhandler.Handler
	Logger  *logrus.Logger
	DryRun  bool

	PollInterval time.Duration

	state State
}

// NewLoop constructs a Loop starting at seqID. PollInterval defaults to
// 60s, overridable via OSM2RDF_POLL_INTERVAL (e.g. "30s") for
// deployments that want to poll the replication feed more or less
// eagerly than the upstream minutely cadence.
func NewLoop(server *Server, sink *sparqlpipeline.Sink, handler *osmhandler.Handler, logger *logrus.Logger, seqID int64) *Loop {
	pollInterval := envconfig.New("OSM2RDF").GetDuration("POLL_INTERVAL", 60*time.Second)
	return &Loop{
		Server:       server,
		Sink:         sink,
		Handler:      handler,
		Logger:       logger,
		PollInterval: pollInterval,
		state:        State{SeqID: seqID, LastTick: time.Now()},
	}
}

// RunOnce executes a single iteration of the main loop body described
// in the design: refresh server state if needed, fetch the current
// diff, drive the handler over it, flush and advance on success, tick
// progress logging, and sleep when caught up to the server.
func (l *Loop) RunOnce() error {
	if l.state.ServerSeqID < l.state.SeqID {
		seq, err := l.Server.CurrentSequence()
		if err != nil {
			l.logWarn("refresh server sequence failed", err)
		} else {
			l.state.ServerSeqID = seq
		}
		if l.state.ServerSeqID < l.state.SeqID {
			l.sleep()
			return nil
		}
	}

	diff, err := l.Server.FetchDiff(l.state.SeqID)
	if err != nil {
		// Fetch errors are tolerated: treat as an empty diff and retry
		// the same sequence id next tick.
		l.logWarn("fetch diff failed", err)
		diff = nil
	}

	if diff != nil && !diff.Empty() {
		objects, err := l.drive(diff)
		if err != nil {
			return err
		}
		l.state.ObjectsSinceTick += objects

		if !l.DryRun {
			seq := l.state.SeqID
			if err := l.Sink.Flush(&seq); err != nil {
				return err
			}
		}
		l.state.SeqID++
	}

	l.maybeTick()

	if l.state.ServerSeqID <= l.state.SeqID {
		seq, err := l.Server.CurrentSequence()
		if err == nil {
			l.state.ServerSeqID = seq
		}
		if l.state.ServerSeqID <= l.state.SeqID {
			l.sleep()
		}
	}
	return nil
}

func (l *Loop) drive(diff *osmsource.Diff) (int, error) {
	count := 0
	err := diff.Each(func(obj osmsource.Object) error {
		count++
		switch obj.Kind {
		case osmsource.KindNode:
			return l.Handler.VisitNode(obj)
		case osmsource.KindWay:
			return l.Handler.VisitWay(obj)
		case osmsource.KindRelation:
			return l.Handler.VisitRelation(obj)
		}
		return nil
	})
	return count, err
}

func (l *Loop) maybeTick() {
	if time.Since(l.state.LastTick) < 60*time.Second {
		return
	}
	if l.Logger != nil {
		lag := time.Since(l.Handler.LastTimestamp())
		elapsed := time.Since(l.state.LastTick)
		fields := obslog.ReplicationFields(l.state.SeqID, lag, l.state.ObjectsSinceTick, elapsed)
		l.Logger.WithFields(logrus.Fields(fields)).Info("replication tick")
	}
	l.state.ObjectsSinceTick = 0
	l.state.LastTick = time.Now()
}

func (l *Loop) sleep() {
	time.Sleep(l.PollInterval)
}

func (l *Loop) logWarn(msg string, err error) {
	if l.Logger != nil {
		l.Logger.WithError(err).Warn(msg)
	}
}
