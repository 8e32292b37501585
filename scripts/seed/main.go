package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"studymap/internal/domain"
	"studymap/internal/store"
	"studymap/pkg/logger"
)

func main() {
	dbPath := flag.String("db", store.DefaultDBPath, "database path")
	force := flag.Bool("force", false, "seed even when entries already exist")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development", ""); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()

	stats, err := st.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read stats", zap.Error(err))
	}
	if stats.Entries > 0 && !*force {
		log.Info("Entries already exist, skipping seeding (use -force to add anyway)",
			zap.Int64("entries", stats.Entries),
		)
		return
	}

	seeds := []struct {
		topic   string
		skills  []string
		summary string
		cls     *domain.Classification
	}{
		{
			topic:   "Go Concurrency",
			skills:  []string{"Go", "Concurrency"},
			summary: "Worked through goroutines, channels and select. Built a small worker pool and hit my first deadlock when every goroutine blocked on an unbuffered channel.",
			cls: &domain.Classification{
				Domain:      "Software Engineering",
				SubTopics:   []string{"concurrency", "go runtime"},
				Complexity:  "intermediate",
				KeyConcepts: []string{"goroutines", "channels", "select", "deadlock"},
			},
		},
		{
			topic:   "SQL Indexing",
			skills:  []string{"SQL", "Databases"},
			summary: "Read about B-tree indexes and why covering indexes make some queries index-only. Benchmarked one query before and after adding a composite index.",
			cls: &domain.Classification{
				Domain:      "Software Engineering",
				SubTopics:   []string{"databases", "performance"},
				Complexity:  "intermediate",
				KeyConcepts: []string{"b-tree", "covering index", "query plan"},
			},
		},
		{
			topic:   "TCP Fundamentals",
			skills:  []string{"Networking"},
			summary: "Traced a TCP handshake in Wireshark and read about slow start and congestion windows.",
			cls: &domain.Classification{
				Domain:      "Computer Networking",
				SubTopics:   []string{"transport protocols"},
				Complexity:  "beginner",
				KeyConcepts: []string{"three-way handshake", "congestion control"},
			},
		},
		{
			topic:   "HTTP/2 Multiplexing",
			skills:  []string{"Networking", "HTTP"},
			summary: "Compared HTTP/1.1 pipelining with HTTP/2 streams. Multiplexing removes head-of-line blocking at the application layer but not at the TCP layer.",
			cls: &domain.Classification{
				Domain:      "Computer Networking",
				SubTopics:   []string{"application protocols"},
				Complexity:  "intermediate",
				KeyConcepts: []string{"multiplexing", "head-of-line blocking", "streams"},
			},
		},
		{
			topic:   "Linear Algebra Refresher",
			skills:  []string{"Math"},
			summary: "Reviewed matrix multiplication and eigenvectors, then worked examples until the geometric picture of an eigenvector clicked again.",
			cls: &domain.Classification{
				Domain:      "Mathematics",
				SubTopics:   []string{"linear algebra"},
				Complexity:  "beginner",
				KeyConcepts: []string{"matrix multiplication", "eigenvectors"},
			},
		},
		{
			topic:   "Raft Consensus",
			skills:  []string{"Distributed Systems", "Go"},
			summary: "Read the Raft paper sections on leader election and log replication, then sketched the two RPCs in Go.",
			cls: &domain.Classification{
				Domain:      "Software Engineering",
				SubTopics:   []string{"distributed systems"},
				Complexity:  "advanced",
				KeyConcepts: []string{"leader election", "log replication", "terms"},
			},
		},
	}

	var entryIDs []int64
	for _, sd := range seeds {
		topicID, err := st.GetOrCreateTopic(ctx, sd.topic)
		if err != nil {
			log.Fatal("Failed to create topic", zap.String("topic", sd.topic), zap.Error(err))
		}
		var skillIDs []int64
		for _, name := range sd.skills {
			id, err := st.GetOrCreateSkill(ctx, name)
			if err != nil {
				log.Fatal("Failed to create skill", zap.String("skill", name), zap.Error(err))
			}
			skillIDs = append(skillIDs, id)
		}
		id, err := st.CreateEntry(ctx, topicID, sd.summary, skillIDs, sd.cls)
		if err != nil {
			log.Fatal("Failed to create entry", zap.String("topic", sd.topic), zap.Error(err))
		}
		entryIDs = append(entryIDs, id)
		log.Info("Seeded entry", zap.Int64("entry_id", id), zap.String("topic", sd.topic))
	}

	connections := []struct {
		source, target int
		relationship   string
		strength       float64
		explanation    string
	}{
		{3, 2, "builds on", 0.9, "HTTP/2 streams still ride on a single TCP connection"},
		{5, 0, "applies", 0.7, "The Raft sketch reuses the worker pool patterns from the concurrency session"},
		{5, 1, "relates to", 0.5, "Replicated logs and index structures both trade write cost for read cost"},
	}
	for _, c := range connections {
		expl := c.explanation
		err := st.AddConnection(ctx, entryIDs[c.source], entryIDs[c.target],
			c.relationship, c.strength, &expl)
		if err != nil {
			log.Warn("Failed to add connection", zap.Error(err))
		}
	}

	blindspots := []struct {
		entry      int
		suggestion string
		category   string
		why        string
		how        string
	}{
		{
			entry:      0,
			suggestion: "Learn the sync package primitives beyond channels",
			category:   "adjacent",
			why:        "Mutexes and WaitGroups cover cases where channels fit poorly",
			how:        "Rounds out the concurrency toolbox before tackling larger programs",
		},
		{
			entry:      2,
			suggestion: "Look at UDP and QUIC next",
			category:   "adjacent",
			why:        "Most of the transport tradeoffs only make sense against the connectionless baseline",
			how:        "Explains why HTTP/3 moved away from TCP",
		},
		{
			entry:      5,
			suggestion: "Study snapshotting and log compaction",
			category:   "gap",
			why:        "Unbounded logs make the replication story incomplete",
			how:        "Needed before the sketch could run for more than a toy workload",
		},
	}
	for _, b := range blindspots {
		cat, why, how := b.category, b.why, b.how
		err := st.AddBlindspot(ctx, entryIDs[b.entry], b.suggestion, &cat, &why, &how)
		if err != nil {
			log.Warn("Failed to add blindspot", zap.Error(err))
		}
	}

	enhanced := "Goroutines are cheap, but coordination is the real subject: channels move ownership of data, select multiplexes readiness, and a worker pool is just a bounded set of goroutines sharing one input channel. The deadlock came from every worker blocking on an unbuffered send with no receiver left."
	if err := st.AttachEnhancedSummary(ctx, entryIDs[0], enhanced); err != nil {
		log.Warn("Failed to attach enhanced summary", zap.Error(err))
	}

	final, err := st.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to verify seeding", zap.Error(err))
	}
	log.Info("Seed completed",
		zap.Int64("entries", final.Entries),
		zap.Int64("topics", final.Topics),
		zap.Int64("skills", final.Skills),
		zap.Int64("connections", final.Connections),
		zap.Int64("blindspots", final.Blindspots),
	)
}
