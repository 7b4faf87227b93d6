package entity

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func mustCandidate(t *testing.T, s string) Candidate {
	t.Helper()
	c, ok := ParseCandidate(json.RawMessage(s))
	if !ok {
		t.Fatalf("not a JSON object: %s", s)
	}
	return c
}

func TestExtract_MinimalCandidate(t *testing.T) {
	b, ok := Extract(mustCandidate(t, `{"id":"b1","name":"Only Name"}`))
	if !ok {
		t.Fatal("expected a business")
	}
	if b.ID != "b1" || b.Name != "Only Name" {
		t.Errorf("got id=%q name=%q", b.ID, b.Name)
	}
	if b.Rating != nil || b.Price != nil || b.Distance != nil || b.ImageURL != nil ||
		b.Coordinates != nil || b.MenuURL != nil || b.Phone != nil || b.URL != nil {
		t.Errorf("optional fields should be absent: %+v", b)
	}
	if b.Tags == nil || len(b.Tags) != 0 {
		t.Errorf("tags should be an empty slice, got %#v", b.Tags)
	}
	if b.ReviewCount != 0 || b.Votes != 0 {
		t.Errorf("review_count=%d votes=%d, want 0", b.ReviewCount, b.Votes)
	}
}

func TestExtract_NameGate(t *testing.T) {
	for _, s := range []string{
		`{"id":"x","rating":4.5}`,
		`{"id":"x","name":null}`,
		`{"id":"x","name":""}`,
		`{"id":"x","name":"   "}`,
		`{"id":"x","name":42}`,
	} {
		if _, ok := Extract(mustCandidate(t, s)); ok {
			t.Errorf("candidate %s should be rejected", s)
		}
	}
}

func TestExtract_FullRecord(t *testing.T) {
	b, ok := Extract(mustCandidate(t, `{
		"id": "pasta-place",
		"alias": "pasta-place-sf",
		"name": "Pasta Place",
		"rating": 4.5,
		"review_count": 312,
		"price": "$$",
		"distance": 1609,
		"image_url": "https://img/pasta.jpg",
		"categories": [{"alias":"italian","title":"Italian"},{"alias":"x","title":""},{"title":"Pasta Shops"}],
		"location": {"address1": "1 Main St", "city": "SF"},
		"coordinates": {"latitude": 37.77, "longitude": -122.42},
		"phone": "+14155550100",
		"url": "https://yelp.com/biz/pasta-place",
		"attributes": {"MenuUrl": "https://menu/pasta"}
	}`))
	if !ok {
		t.Fatal("expected a business")
	}
	if b.ID != "pasta-place" {
		t.Errorf("id = %q", b.ID)
	}
	if b.Rating == nil || *b.Rating != 4.5 {
		t.Errorf("rating = %v", b.Rating)
	}
	if b.ReviewCount != 312 {
		t.Errorf("review_count = %d", b.ReviewCount)
	}
	if b.Price == nil || *b.Price != "$$" {
		t.Errorf("price = %v", b.Price)
	}
	if b.Distance == nil || *b.Distance != "1.0 mi" {
		t.Errorf("distance = %v", b.Distance)
	}
	if !reflect.DeepEqual(b.Tags, []string{"Italian", "Pasta Shops"}) {
		t.Errorf("tags = %v", b.Tags)
	}
	if b.Coordinates == nil || b.Coordinates.Latitude != 37.77 || b.Coordinates.Longitude != -122.42 {
		t.Errorf("coordinates = %+v", b.Coordinates)
	}
	if b.MenuURL == nil || *b.MenuURL != "https://menu/pasta" {
		t.Errorf("menu_url = %v", b.MenuURL)
	}
	if string(b.Location) != `{"address1": "1 Main St", "city": "SF"}` {
		t.Errorf("location not passed through verbatim: %s", b.Location)
	}
	if len(b.Categories) == 0 {
		t.Error("categories should be passed through")
	}
}

func TestExtract_DistanceZero(t *testing.T) {
	b, _ := Extract(mustCandidate(t, `{"name":"Here","distance":0}`))
	if b.Distance == nil || *b.Distance != "0.0 mi" {
		t.Fatalf("distance = %v, want 0.0 mi", b.Distance)
	}
}

func TestExtract_StringEncodedNumbers(t *testing.T) {
	b, _ := Extract(mustCandidate(t, `{"name":"S","rating":"3.5","review_count":"12","distance":"804.5"}`))
	if b.Rating == nil || *b.Rating != 3.5 {
		t.Errorf("rating = %v", b.Rating)
	}
	if b.ReviewCount != 12 {
		t.Errorf("review_count = %d", b.ReviewCount)
	}
	if b.Distance == nil || *b.Distance != "0.5 mi" {
		t.Errorf("distance = %v", b.Distance)
	}
}

func TestExtract_InvalidOptionalsDropped(t *testing.T) {
	b, ok := Extract(mustCandidate(t, `{"name":"Odd","rating":7,"price":"cheap","review_count":-3,"distance":"far","coordinates":"nowhere"}`))
	if !ok {
		t.Fatal("malformed optionals must not reject the candidate")
	}
	if b.Rating != nil || b.Price != nil || b.Distance != nil || b.Coordinates != nil || b.ReviewCount != 0 {
		t.Errorf("malformed optionals should be absent: %+v", b)
	}
}

func TestExtract_CoordinatesAtomic(t *testing.T) {
	cases := []string{
		`{"name":"A","coordinates":{"latitude":37.7}}`,
		`{"name":"A","coordinates":{"longitude":-122.4}}`,
		`{"name":"A","coordinates":{"latitude":null,"longitude":-122.4}}`,
		`{"name":"A","coordinates":{}}`,
	}
	for _, s := range cases {
		b, _ := Extract(mustCandidate(t, s))
		if b.Coordinates != nil {
			t.Errorf("%s: coordinates should be absent, got %+v", s, b.Coordinates)
		}
	}
}

func TestExtract_ImageFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"top-level wins", `{"name":"A","image_url":"top","contextual_info":{"photos":[{"original_url":"ctx"}]},"photos":["p"]}`, "top"},
		{"empty top-level falls through", `{"name":"A","image_url":"","contextual_info":{"photos":[{"original_url":"ctx"}]}}`, "ctx"},
		{"null top-level falls through", `{"name":"A","image_url":null,"photos":["p"]}`, "p"},
		{"contextual bare string", `{"name":"A","contextual_info":{"photos":["ctx-str"]}}`, "ctx-str"},
		{"contextual empty list uses photos", `{"name":"A","contextual_info":{"photos":[]},"photos":[{"original_url":"p-obj"}]}`, "p-obj"},
		{"photos bare string", `{"name":"A","photos":["p-str"]}`, "p-str"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, _ := Extract(mustCandidate(t, c.in))
			if b.ImageURL == nil || *b.ImageURL != c.want {
				t.Fatalf("image_url = %v, want %q", b.ImageURL, c.want)
			}
		})
	}

	b, _ := Extract(mustCandidate(t, `{"name":"A","photos":[]}`))
	if b.ImageURL != nil {
		t.Errorf("no image source should leave image_url absent, got %q", *b.ImageURL)
	}
}

func TestExtract_MenuFallback(t *testing.T) {
	b, _ := Extract(mustCandidate(t, `{"name":"A","attributes":{"MenuUrl":""},"menu_url":"https://m"}`))
	if b.MenuURL == nil || *b.MenuURL != "https://m" {
		t.Errorf("menu_url = %v", b.MenuURL)
	}
	b, _ = Extract(mustCandidate(t, `{"name":"A","attributes":null}`))
	if b.MenuURL != nil {
		t.Errorf("menu_url should be absent, got %q", *b.MenuURL)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	in := `{"name":"No Id Diner","coordinates":{"latitude":40.1,"longitude":-73.9},"rating":4}`
	a, _ := Extract(mustCandidate(t, in))
	b, _ := Extract(mustCandidate(t, in))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("extraction not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestDeriveID(t *testing.T) {
	c := mustCandidate(t, `{"alias":"the-alias","name":"X"}`)
	if got := DeriveID(c, "X", nil); got != "the-alias" {
		t.Errorf("alias fallback = %q", got)
	}

	c = mustCandidate(t, `{"id":12345,"name":"X"}`)
	if got := DeriveID(c, "X", nil); got != "12345" {
		t.Errorf("numeric id = %q", got)
	}

	plain := mustCandidate(t, `{"name":"X"}`)
	a := DeriveID(plain, "Joe's Pizza", nil)
	b := DeriveID(plain, "JOE'S PIZZA", nil)
	if a != b {
		t.Errorf("derived id should be case-insensitive: %q vs %q", a, b)
	}
	b1, _ := Extract(mustCandidate(t, `{"name":"Joe's Pizza","coordinates":{"latitude":1,"longitude":2}}`))
	b2, _ := Extract(mustCandidate(t, `{"name":"Joe's Pizza","coordinates":{"latitude":3,"longitude":4}}`))
	if b1.ID == b2.ID {
		t.Error("same name at different coordinates should derive different ids")
	}
	if b1.ID == "" || b1.ID == a {
		t.Errorf("unexpected derived id %q", b1.ID)
	}
}

func TestExtractor_AllIsolatesCandidates(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	got := e.All("test", []Candidate{
		mustCandidate(t, `{"id":"1","name":"One"}`),
		mustCandidate(t, `{"id":"2"}`),
		mustCandidate(t, `{"id":"3","name":"Three","rating":"bad"}`),
	})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractor_List(t *testing.T) {
	e := NewExtractor(nil)
	got, dropped := e.List("listing", []json.RawMessage{
		json.RawMessage(`{"id":"a","name":"A"}`),
		json.RawMessage(`"garbage"`),
		json.RawMessage(`{"id":"b","name":"B"}`),
	})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("got %+v", got)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestCandidate_Strings(t *testing.T) {
	c := mustCandidate(t, `{"one":"Italian","many":["Vegan",""," ",3,"Halal"],"none":{"a":1}}`)
	if got := c.Strings("one"); !reflect.DeepEqual(got, []string{"Italian"}) {
		t.Errorf("one = %v", got)
	}
	if got := c.Strings("many"); !reflect.DeepEqual(got, []string{"Vegan", "Halal"}) {
		t.Errorf("many = %v", got)
	}
	if got := c.Strings("none"); got != nil {
		t.Errorf("none = %v", got)
	}
}
