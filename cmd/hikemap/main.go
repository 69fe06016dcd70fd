package main

import (
	"context"
	"errors"
	"log"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"trailtutor/internal/config"
	"trailtutor/internal/geocode"
	"trailtutor/internal/hike"
	"trailtutor/internal/media"
	"trailtutor/internal/models"
	"trailtutor/internal/notify"
	"trailtutor/internal/replay"
	"trailtutor/internal/service"
	"trailtutor/internal/session"
	"trailtutor/internal/storage"
	"trailtutor/internal/tracker"
	"trailtutor/pkg/graceful"
	"trailtutor/pkg/kafkaclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	h, err := hike.Load(cfg.HikeFile)
	if err != nil {
		log.Fatalf("Failed to load hike: %v", err)
	}
	if resolver := newResolver(cfg); resolver != nil {
		n := hike.ResolveNames(ctx, h, resolver)
		log.Printf("Named %d unnamed waypoints", n)
	}

	store := newStore(ctx, cfg)
	photo, video := media.Count(ctx, store, h.Annotations, models.Photo), media.Count(ctx, store, h.Annotations, models.Video)
	log.Printf("photo - %s, video - %s", photo, video)
	bar := progressbar.Default(int64(photo.Total+video.Total), "Prefetching media")
	prefetcher := media.NewPrefetcher(store, media.WithProgress(func(models.MediaKind, media.Report) {
		_ = bar.Add(1)
	}))

	notifier, closeNotifier := newNotifier(ctx, cfg)
	defer closeNotifier()
	tr := tracker.New(h, tracker.WithThreshold(cfg.Threshold), tracker.WithNotifier(notifier))

	fixes, stopFixes := newFixSource(ctx, cfg)
	defer stopFixes()

	s := session.New(h, store, prefetcher, tr)
	s.OnPrefetchDone = func(r media.Result) {
		_ = bar.Finish()
		log.Printf("Media ready: photo %+v, video %+v", r.Photo, r.Video)
	}

	sum, err := s.Run(ctx, fixes)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Session failed: %v", err)
	}
	log.Printf("Reached %d of %d points; photo %s, video %s, progress %.0f%%",
		sum.Attended, len(h.Annotations), sum.Photo, sum.Video, 100*media.Progress(sum.Photo, sum.Video))
	log.Println("Main method finished, application exiting.")
}

func newResolver(cfg *config.Config) hike.NameResolver {
	switch cfg.Geocoder {
	case "nominatim":
		return geocode.NewNominatim()
	case "google":
		g, err := geocode.NewGoogle(cfg.GoogleAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Google geocoder: %v", err)
		}
		return g
	}
	return nil
}

func newStore(ctx context.Context, cfg *config.Config) media.Store {
	if cfg.MirrorToS3 {
		s3, err := storage.NewS3Service(cfg.S3, filepath.Join(cfg.CacheDir, ".partial"))
		if err != nil {
			log.Fatal(err)
		}
		if err := s3.EnsureBucket(ctx, ""); err != nil {
			log.Fatalf("Failed to prepare bucket: %v", err)
		}
		return s3
	}
	disk, err := media.NewDiskStore(cfg.CacheDir)
	if err != nil {
		log.Fatal(err)
	}
	return disk
}

func newNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, func()) {
	notifiers := []notify.Notifier{notify.LogNotifier{}}
	var closers []func()

	if cfg.KafkaBroker != "" && cfg.NotifyTopic != "" {
		producer := kafkaclient.NewProducer(cfg.KafkaBroker, cfg.NotifyTopic)
		notifiers = append(notifiers, notify.NewKafkaNotifier(producer))
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				log.Printf("Failed to close Kafka producer: %v", err)
			}
		})
	}
	if cfg.NtfyTopic != "" {
		notifiers = append(notifiers, notify.NewNtfyNotifier(cfg.NtfyURL, cfg.NtfyTopic))
	}
	if cfg.PostgresDSN != "" {
		journal, pool, err := storage.NewJournal(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to open arrival journal: %v", err)
		}
		if err := journal.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare arrival journal: %v", err)
		}
		notifiers = append(notifiers, notify.NewJournalNotifier(journal))
		closers = append(closers, pool.Close)
	}

	return notify.Multi(notifiers...), func() {
		for _, c := range closers {
			c()
		}
	}
}

// newFixSource replays a GPX file when one is configured, otherwise it reads
// fixes from the Kafka location topic.
func newFixSource(ctx context.Context, cfg *config.Config) (<-chan models.Fix, func()) {
	if cfg.ReplayFile != "" {
		fixes, err := replay.LoadFile(cfg.ReplayFile)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Replaying %d fixes from %s at %.1fx", len(fixes), cfg.ReplayFile, cfg.ReplaySpeed)
		return replay.Player{Speed: cfg.ReplaySpeed}.Play(ctx, fixes), func() {}
	}

	if cfg.KafkaBroker == "" {
		log.Fatalf("Either REPLAY_GPX or KAFKA_BROKER must be set")
	}
	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", cfg.KafkaBroker, cfg.FixTopic, cfg.FixGroupID)
	consumer := kafkaclient.NewKafkaConsumer(kafkaclient.Config{
		Broker:  cfg.KafkaBroker,
		Topic:   cfg.FixTopic,
		GroupID: cfg.FixGroupID,
	})
	consumer.StartConsuming(ctx)
	return service.NewIterator(consumer, service.DecodeFix).Items(ctx), consumer.Stop
}
