//go:build datagen_sources
// +build datagen_sources

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

// Gera os arquivos CSV de origem dos planos social e streams:
// users.csv, tweets.csv, followers.csv, tweet_relationships.csv,
// streams.csv e shared_audience.csv.
//
// Uso: go run -tags datagen_sources datagen_sources.go -out ./data -users 1000 -tweets 5000

var relationshipKinds = []string{"RETWEET", "REPLY", "MENTION"}

var streamLanguages = []string{"pt", "en", "es", "fr", "de", "ja"}

func main() {
	outDir := flag.String("out", "./data", "Diretório de saída dos CSVs.")
	numUsers := flag.Int("users", 1000, "Quantidade de usuários.")
	numTweets := flag.Int("tweets", 5000, "Quantidade de tweets.")
	numFollows := flag.Int("follows", 8000, "Quantidade de arestas de follow.")
	numTweetRels := flag.Int("tweet-rels", 6000, "Quantidade de relacionamentos entre tweets.")
	numStreams := flag.Int("streams", 500, "Quantidade de streams.")
	numShared := flag.Int("shared", 2000, "Quantidade de pares de audiência compartilhada.")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed do gerador.")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	writeUsers(*outDir, *numUsers)
	writeTweets(*outDir, rng, *numTweets, *numUsers)
	writeFollowers(*outDir, rng, *numFollows, *numUsers)
	writeTweetRelationships(*outDir, rng, *numTweetRels, *numTweets, *numUsers)
	writeStreams(*outDir, rng, *numStreams)
	writeSharedAudience(*outDir, rng, *numShared, *numStreams)

	log.Printf("Done. Sources written to %s", *outDir)
}

func writeCSV(dir string, name string, header []string, rows [][]string) {
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		log.Fatalf("Failed to write header of %s: %v", name, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			log.Fatalf("Failed to write row of %s: %v", name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("Failed to flush %s: %v", name, err)
	}

	log.Printf("Wrote %d rows to %s", len(rows), name)
}

func writeUsers(dir string, n int) {
	rows := make([][]string, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			faker.Name(),
			gofakeit.Username(),
			gofakeit.DateRange(
				time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			).Format("2006-01-02"),
		})
	}
	writeCSV(dir, "users.csv", []string{"id", "name", "username", "registeredAt"}, rows)
}

func writeTweets(dir string, rng *rand.Rand, n int, numUsers int) {
	rows := make([][]string, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			gofakeit.Sentence(rng.Intn(12) + 3),
			gofakeit.DateRange(
				time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			).Format("2006-01-02T15:04:05"),
			strconv.Itoa(rng.Intn(numUsers) + 1),
		})
	}
	writeCSV(dir, "tweets.csv", []string{"id", "text", "createdAt", "authorId"}, rows)
}

func writeFollowers(dir string, rng *rand.Rand, n int, numUsers int) {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		source := rng.Intn(numUsers) + 1
		target := rng.Intn(numUsers) + 1
		if target == source {
			target = source%numUsers + 1
		}
		rows = append(rows, []string{strconv.Itoa(source), strconv.Itoa(target)})
	}
	writeCSV(dir, "followers.csv", []string{"sourceId", "targetId"}, rows)
}

func writeTweetRelationships(dir string, rng *rand.Rand, n int, numTweets int, numUsers int) {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		kind := relationshipKinds[rng.Intn(len(relationshipKinds))]

		// MENTION aponta tweet -> usuário; os demais ligam tweets.
		mentioned := ""
		target := strconv.Itoa(rng.Intn(numTweets) + 1)
		if kind == "MENTION" {
			mentioned = strconv.Itoa(rng.Intn(numUsers) + 1)
			target = ""
		}

		rows = append(rows, []string{
			strconv.Itoa(rng.Intn(numTweets) + 1),
			target,
			mentioned,
			kind,
		})
	}
	writeCSV(dir, "tweet_relationships.csv", []string{"sourceId", "targetId", "mentionedUserId", "type"}, rows)
}

func writeStreams(dir string, rng *rand.Rand, n int) {
	rows := make([][]string, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			streamLanguages[rng.Intn(len(streamLanguages))],
		})
	}
	writeCSV(dir, "streams.csv", []string{"id", "language"}, rows)
}

func writeSharedAudience(dir string, rng *rand.Rand, n int, numStreams int) {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		source := rng.Intn(numStreams) + 1
		target := rng.Intn(numStreams) + 1
		if target == source {
			target = source%numStreams + 1
		}
		rows = append(rows, []string{
			strconv.Itoa(source),
			strconv.Itoa(target),
			fmt.Sprintf("%.3f", rng.Float64()),
		})
	}
	writeCSV(dir, "shared_audience.csv", []string{"source", "target", "weight"}, rows)
}
