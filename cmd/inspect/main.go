package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/kr/pretty"

	"trailtutor/internal/env"
	"trailtutor/internal/hike"
	"trailtutor/internal/media"
	"trailtutor/internal/models"
	"trailtutor/internal/tracker"
)

func main() {
	env.LoadEnv()
	hikeFile := flag.String("hike", env.GetEnv("HIKE_FILE", ""), "Path to the hike GeoJSON file.")
	cacheDir := flag.String("cache", env.GetEnv("MEDIA_CACHE_DIR", "media"), "Media cache directory.")
	flag.Parse()

	if *hikeFile == "" {
		log.Fatalf("no hike file given, use -hike or HIKE_FILE")
	}
	h, err := hike.Load(*hikeFile)
	if err != nil {
		log.Fatal(err)
	}
	store, err := media.NewDiskStore(*cacheDir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	photo := media.Count(ctx, store, h.Annotations, models.Photo)
	video := media.Count(ctx, store, h.Annotations, models.Video)

	fmt.Printf("%# v\n", pretty.Formatter(h.Annotations))
	pretty.Println(tracker.Waypoints(h))
	b := hike.Bound(h)
	fmt.Printf("route: %d points, bound %v..%v, length %.0f m\n",
		len(h.Route), b.Min, b.Max, tracker.ProgressOn(h.Route, models.Fix{}).Total)
	fmt.Printf("photo - %s\nvideo - %s\nloaded %.0f%%\n", photo, video, 100*media.Progress(photo, video))
}
