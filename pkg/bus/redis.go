package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/internal/metrics"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// publishScript sequences, retains & fans out an event in one atomic step so
// subscribers & the backlog always agree on ordering. An event for a job
// version at or below the last one published is refused (returns 0).
//
// KEYS: sequence key, backlog key, version key
// ARGV: event json (without a sequence), backlog size, backlog ttl (seconds), channel, job version
var publishScript = redis.NewScript(`
local version = tonumber(ARGV[5])
if version > 0 then
	local last = tonumber(redis.call('GET', KEYS[3]) or '0')
	if version <= last then
		return 0
	end
	redis.call('SET', KEYS[3], version)
end
local seq = redis.call('INCR', KEYS[1])
local msg = '{"sequence":' .. seq .. ',' .. string.sub(ARGV[1], 2)
redis.call('RPUSH', KEYS[2], msg)
redis.call('LTRIM', KEYS[2], -tonumber(ARGV[2]), -1)
if tonumber(ARGV[3]) > 0 then
	redis.call('EXPIRE', KEYS[2], ARGV[3])
end
redis.call('PUBLISH', ARGV[4], msg)
return seq
`)

// Redis is a Bus backed by redis pub/sub with a capped list per job as the backlog.
type Redis struct {
	opts *Options
	cli  *redis.Client
}

// NewRedis connects to redis at opts.URL
func NewRedis(opts *Options) (*Redis, error) {
	opts.SetDefaults()
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.TLSConfig != nil {
		ropts.TLSConfig = opts.TLSConfig
	}
	cli := redis.NewClient(ropts)
	if err := cli.Ping(context.Background()).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{opts: opts, cli: cli}, nil
}

func (r *Redis) Close() error {
	return r.cli.Close()
}

func (r *Redis) Publish(ctx context.Context, ev *structs.Event) (*structs.Event, error) {
	if ev.JobID == "" {
		return nil, fmt.Errorf("%w: event has no job id", ie.ErrInvalidArg)
	}
	out := *ev
	out.Sequence = 0 // assigned by the script
	if out.PublishedAt == 0 {
		out.PublishedAt = timeNow()
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, err
	}

	seq, err := publishScript.Run(
		ctx,
		r.cli,
		[]string{r.seqKey(ev.JobID), r.backlogKey(ev.JobID), r.versionKey(ev.JobID)},
		string(data),
		r.opts.BacklogSize,
		int64(r.opts.BacklogTTL.Seconds()),
		r.channel(ev.JobID),
		ev.Version,
	).Int64()
	if err != nil {
		return nil, err
	}
	if seq == 0 {
		return nil, fmt.Errorf("%w: job %s version %d", ie.ErrStaleEvent, ev.JobID, ev.Version)
	}

	out.Sequence = seq
	return &out, nil
}

func (r *Redis) Subscribe(ctx context.Context, jobIDs ...string) (Subscription, error) {
	var ps *redis.PubSub
	if len(jobIDs) == 0 {
		ps = r.cli.PSubscribe(ctx, r.channel("*"))
	} else {
		channels := make([]string, len(jobIDs))
		for i, id := range jobIDs {
			channels[i] = r.channel(id)
		}
		ps = r.cli.Subscribe(ctx, channels...)
	}

	// wait for redis to confirm so nothing published after we return is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	s := &redisSub{
		ps:   ps,
		out:  make(chan *structs.Event, r.opts.SubscriberBuffer),
		done: make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

func (r *Redis) Backlog(ctx context.Context, jobID string, after int64) (*Backlog, error) {
	var (
		last *redis.StringCmd
		list *redis.StringSliceCmd
	)
	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		last = pipe.Get(ctx, r.seqKey(jobID))
		list = pipe.LRange(ctx, r.backlogKey(jobID), 0, -1)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	b := &Backlog{Events: []*structs.Event{}}
	b.Last, err = last.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for i, raw := range list.Val() {
		ev := &structs.Event{}
		if err := json.Unmarshal([]byte(raw), ev); err != nil {
			return nil, fmt.Errorf("failed to decode backlog event for job %s: %w", jobID, err)
		}
		if i == 0 {
			b.Oldest = ev.Sequence
		}
		if ev.Sequence > after {
			b.Events = append(b.Events, ev)
		}
	}
	return b, nil
}

func (r *Redis) LastSequence(ctx context.Context, jobID string) (int64, error) {
	seq, err := r.cli.Get(ctx, r.seqKey(jobID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return seq, err
}

func (r *Redis) Purge(ctx context.Context, jobIDs ...string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	keys := []string{}
	for _, id := range jobIDs {
		keys = append(keys, r.seqKey(id), r.backlogKey(id), r.versionKey(id))
	}
	return r.cli.Del(ctx, keys...).Err()
}

// keys for a job share a hash tag so the publish script works on a cluster
func (r *Redis) seqKey(jobID string) string {
	return fmt.Sprintf("%s:{%s}:seq", r.opts.KeyPrefix, jobID)
}

func (r *Redis) backlogKey(jobID string) string {
	return fmt.Sprintf("%s:{%s}:backlog", r.opts.KeyPrefix, jobID)
}

func (r *Redis) versionKey(jobID string) string {
	return fmt.Sprintf("%s:{%s}:version", r.opts.KeyPrefix, jobID)
}

func (r *Redis) channel(jobID string) string {
	return fmt.Sprintf("%s:events:%s", r.opts.KeyPrefix, jobID)
}

type redisSub struct {
	ps   *redis.PubSub
	out  chan *structs.Event
	done chan struct{}
	once sync.Once
}

func (s *redisSub) pump() {
	defer close(s.out)
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				log.WithError(err).WithField("channel", msg.Channel).Warn("dropping undecodable event")
				continue
			}
			select {
			case s.out <- ev:
			default:
				metrics.SubscriberDrops.Inc()
			}
		}
	}
}

func (s *redisSub) Events() <-chan *structs.Event {
	return s.out
}

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func decodeEvent(payload string) (*structs.Event, error) {
	ev := &structs.Event{}
	err := json.NewDecoder(strings.NewReader(payload)).Decode(ev)
	if err != nil {
		return nil, err
	}
	if ev.JobID == "" || ev.Sequence <= 0 {
		return nil, fmt.Errorf("event missing job id or sequence")
	}
	return ev, nil
}
