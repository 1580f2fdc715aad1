// package testing contains shared testing utilities and a small catalogue fixture
package testing

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PodcastsCSV is a five podcast catalogue.
//
// Authors resolve to Brian Denny (1), Tallin Country Church (2) and Unknown author (3).
// Categories resolve to Comedy (1), Society & Culture (2), Religion & Spirituality (3),
// Christianity (4), Technology (5) and Business (6).
const PodcastsCSV = `id,title,image,description,website,itunes_id,language,author,categories
1,Brian Denny Radio,http://is1.mzstatic.com/1.jpg,"Radio hosted by Brian Denny, live from the garage",http://briandenny.com,538533906,English,Brian Denny,Comedy | Society & Culture
2,Tallin Messages,http://is1.mzstatic.com/2.jpg,Weekly messages from the Tallin congregation,http://tallin.org,1137009151,English,Tallin Country Church,Religion & Spirituality | Christianity
3,Zebra Talk,http://is1.mzstatic.com/3.jpg,Conversaciones sobre nada,http://zebra.example,1200000003,Spanish,,Comedy
4,apple orchard hour,http://is1.mzstatic.com/4.jpg,Gadgets and growing things,http://orchard.example,,English,Brian Denny,Technology
5,2 Broke Hosts,http://is1.mzstatic.com/5.jpg,Two hosts and no budget,http://broke.example,1200000005,English,,Comedy|Business
`

// EpisodesCSV holds six episodes for the fixture podcasts and one orphan (podcast 99).
const EpisodesCSV = `id,podcast_id,title,audio,audio_length,description,pub_date
1,1,Ep 1: Pilot,http://audio.example/1.mp3,1800,The first one,2017-12-01 00:09:47+00
2,1,Ep 0: Trailer,http://audio.example/2.mp3,240,Before the first one,2017-11-01 00:00:00+00
3,2,Sunday Message,http://audio.example/3.mp3,3600,A message,2018-01-05 10:00:00+00
4,3,Hola,http://audio.example/4.mp3,900,Saludos,2019-03-03 12:00:00+00
5,99,Orphan,http://audio.example/5.mp3,60,Nobody owns this,2019-03-03 12:00:00+00
6,1,Ep 2: Garage Sale,http://audio.example/6.mp3,3000,The second one,2017-12-15 00:00:00+00
7,4,Pruning,http://audio.example/7.mp3,1200,Undated,not a date
`

const (
	FixturePodcasts   = 5
	FixtureEpisodes   = 6
	FixtureAuthors    = 3
	FixtureCategories = 6
)

// WriteFixtureFiles writes both fixture CSVs into a temp dir and returns their paths.
func WriteFixtureFiles(t *testing.T) (podcasts, episodes string) {
	t.Helper()
	dir := t.TempDir()
	podcasts = filepath.Join(dir, "podcasts.csv")
	episodes = filepath.Join(dir, "episodes.csv")
	MustWriteFile(t, podcasts, PodcastsCSV)
	MustWriteFile(t, episodes, EpisodesCSV)
	return podcasts, episodes
}

// FixtureReaders returns fresh readers over both fixture CSVs.
func FixtureReaders() (podcasts, episodes io.Reader) {
	return strings.NewReader(PodcastsCSV), strings.NewReader(EpisodesCSV)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
