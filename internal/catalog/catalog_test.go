package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whrealtors/realty-web/internal/geo"
)

func loadSunrise(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(context.Background(), FileSource{Path: "testdata/sunrise.json"})
	require.NoError(t, err)
	return c
}

func TestLookupSunriseScenario(t *testing.T) {
	c := loadSunrise(t)

	p, ok := c.Lookup("sunrise-towers")
	require.True(t, ok)
	assert.Equal(t, "Sunrise Towers", p.Title)
	require.NotNil(t, p.Location)
	assert.Equal(t, geo.Point{Lat: 19.07, Lng: 72.87}, *p.Location)
	assert.Equal(t, []Entry{Text("Gated Security")}, p.Advantages)
	assert.Equal(t, []Entry{Text("Gym")}, p.Features)
	img, ok := p.Gallery.Image("lobby")
	assert.True(t, ok)
	assert.Equal(t, "/img/lobby.jpg", img)

	missing, ok := c.Lookup("moonrise-towers")
	assert.False(t, ok)
	assert.Nil(t, missing)
}

func TestLookupNotFoundIsStable(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{})
	require.NoError(t, err)
	require.Positive(t, c.Len())

	for _, id := range []string{"", "nonexistent-id-xyz", "Sunrise-Towers", " sunrise-towers"} {
		p, ok := c.Lookup(id)
		assert.False(t, ok, "id %q", id)
		assert.Nil(t, p, "id %q", id)
	}
}

func TestLookupIsPureAndRepeatable(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{})
	require.NoError(t, err)

	first, ok := c.Lookup("ramvan-villas")
	require.True(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, ok := c.Lookup("ramvan-villas")
			assert.True(t, ok)
			assert.Same(t, first, again)
		}()
	}
	wg.Wait()
}

func TestEmbeddedCatalogShapes(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{})
	require.NoError(t, err)

	p, ok := c.Lookup("krupal-habitat")
	require.True(t, ok)
	require.Len(t, p.Advantages, 3)
	assert.Equal(t, Titled, p.Advantages[0].Kind())
	assert.Equal(t, "Clear Titles", p.Advantages[0].Title())
	assert.Equal(t, TextOnly, p.Features[1].Kind())
	assert.Equal(t, "Clubhouse", p.Features[1].Description())

	var categories []string
	for _, cover := range p.Gallery {
		categories = append(categories, cover.Category)
	}
	assert.Equal(t, []string{"entrance", "clubhouse", "layout", "bedroom", "house"}, categories)
	require.NotNil(t, p.Assistant)
	assert.Contains(t, p.Assistant.Persona, "Dholera")
	assert.NotEmpty(t, p.Assistant.Greeting)
	assert.NotEmpty(t, p.Assistant.Knowledge)

	ramvan, ok := c.Lookup("ramvan-villas")
	require.True(t, ok)
	assert.Nil(t, ramvan.Location)
	require.NotNil(t, ramvan.Assistant)
	img, ok := ramvan.Gallery.Image("dining room")
	assert.True(t, ok)
	assert.Equal(t, "/img/ramvan/dining.jpg", img)

	sunrise, ok := c.Lookup("sunrise-towers")
	require.True(t, ok)
	assert.Nil(t, sunrise.Assistant)
	assert.Len(t, c.Team(), 4)
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	_, err := New([]Project{{ID: "a"}, {ID: "a"}}, nil)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = New([]Project{{Title: "No id"}}, nil)
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestAllReturnsCopyInOrder(t *testing.T) {
	c, err := New([]Project{{ID: "b", Title: "B"}, {ID: "a", Title: "A"}}, nil)
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	all[0].Title = "mutated"
	p, _ := c.Lookup("b")
	assert.Equal(t, "B", p.Title)
}

func TestDecodeRejectsBadEntry(t *testing.T) {
	doc := "projects:\n  - id: x\n    advantages:\n      - [1, 2]\n"
	_, err := Decode(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestDecodeEmptyDocument(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

type fakeS3 struct {
	bucket, key string
	body        string
	err         error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestParseSourceAndLoadFromS3(t *testing.T) {
	client := &fakeS3{body: "projects:\n  - id: s3-only\n    title: From S3\n"}
	src, err := ParseSource("s3://site-content/catalog/projects.yaml", client)
	require.NoError(t, err)
	assert.Equal(t, "s3://site-content/catalog/projects.yaml", src.String())

	c, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "site-content", client.bucket)
	assert.Equal(t, "catalog/projects.yaml", client.key)
	_, ok := c.Lookup("s3-only")
	assert.True(t, ok)
}

func TestLoadWrapsSourceErrors(t *testing.T) {
	boom := errors.New("access denied")
	src, err := ParseSource("s3://bucket/key", &fakeS3{err: boom})
	require.NoError(t, err)

	_, err = Load(context.Background(), src)
	assert.ErrorIs(t, err, boom)
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("", nil)
	require.NoError(t, err)
	assert.IsType(t, EmbeddedSource{}, src)

	src, err = ParseSource("file:/etc/site/projects.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "/etc/site/projects.yaml"}, src)

	_, err = ParseSource("s3://bucket-only", nil)
	assert.Error(t, err)
}

func TestContactLink(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{})
	require.NoError(t, err)

	sunrise, _ := c.Lookup("sunrise-towers")
	assert.Equal(t, "https://wa.me/919820000000", ContactLink(sunrise, "910000000000"))

	ramvan, _ := c.Lookup("ramvan-villas")
	assert.Equal(t, "https://wa.me/910000000000", ContactLink(ramvan, "910000000000"))
}

func TestDecodeAssistantProfile(t *testing.T) {
	doc := `
projects:
  - id: a
    title: A
    assistant:
      persona: "  Sell A.  "
      knowledge: ["plots are 250 sq yards", "  ", "clubhouse"]
  - id: b
    title: B
    assistant:
      greeting: hello
`
	c, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	a, _ := c.Lookup("a")
	require.NotNil(t, a.Assistant)
	assert.Equal(t, "Sell A.", a.Assistant.Persona)
	assert.Equal(t, []string{"plots are 250 sq yards", "clubhouse"}, a.Assistant.Knowledge)

	// A profile without a persona is treated as absent.
	b, _ := c.Lookup("b")
	assert.Nil(t, b.Assistant)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Sell A.")
}
