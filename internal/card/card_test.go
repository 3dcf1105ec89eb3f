package card

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/xwteam/mascot/internal/lookup"
	"github.com/xwteam/mascot/internal/visitor"
)

type stubLocator struct {
	res    lookup.Result
	gotIP  string
	called int
}

func (s *stubLocator) Lookup(_ context.Context, ip string) lookup.Result {
	s.called++
	s.gotIP = ip
	return s.res
}

func TestPickBackground_StableWithinHour(t *testing.T) {
	hourStart := time.Unix(1700000000/3600*3600, 0)
	want := PickBackground(hourStart)

	for _, off := range []time.Duration{time.Second, 17 * time.Minute, 59*time.Minute + 59*time.Second} {
		if got := PickBackground(hourStart.Add(off)); got != want {
			t.Errorf("+%v: got %s, want %s", off, got.ID, want.ID)
		}
	}
}

func TestPickBackground_AdvancesEachHour(t *testing.T) {
	base := time.Unix(0, 0)
	for h := range 3 * len(Backgrounds) {
		got := PickBackground(base.Add(time.Duration(h)*time.Hour + 30*time.Minute))
		if want := Backgrounds[h%len(Backgrounds)]; got != want {
			t.Errorf("hour %d: got %s, want %s", h, got.ID, want.ID)
		}
	}
}

func TestPickBackground_BeforeEpoch(t *testing.T) {
	got := PickBackground(time.Unix(-1, 0))
	if want := Backgrounds[len(Backgrounds)-1]; got != want {
		t.Errorf("got %s, want %s", got.ID, want.ID)
	}
}

func TestLabelsFor(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", "Visitor Card"},
		{"en-US,en;q=0.9", "Visitor Card"},
		{"zh-CN,zh;q=0.9,en;q=0.8", "访客签名卡"},
		{"zh", "访客签名卡"},
		{"fr-FR", "Visitor Card"},
		{";;;garbage", "Visitor Card"},
	}
	for _, tc := range cases {
		if got := LabelsFor(tc.header).Title; got != tc.want {
			t.Errorf("LabelsFor(%q).Title = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func testRecord() Record {
	return Record{
		ClientInfo: visitor.ClientInfo{
			IP:      "203.0.113.1",
			Browser: visitor.Browser{Name: "Firefox", Version: "121.0"},
			OS:      "Linux",
		},
		Location:   "广东省深圳市",
		Weather:    "Rain: 0 Humidity: 1\nTemp: 2 Feels like: 3\nWind: N Pressure: 4\nComfort: ok",
		Background: Backgrounds[2],
	}
}

func TestRender_Layout(t *testing.T) {
	out := string(Render(testRecord(), englishLabels, DefaultFooter))

	for _, want := range []string{
		`width="400"`, `height="250"`,
		"#4facfe", "#00f2fe",
		"Visitor Card",
		"IP: 203.0.113.1",
		"From: 「广东省深圳市」",
		"Browser: Firefox (121.0)",
		"System: Linux",
		"Current weather:",
		DefaultFooter,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(out, "#667eea") {
		t.Error("SVG uses the first gradient instead of the chosen one")
	}

	for i, y := range []string{`y="175"`, `y="190"`, `y="205"`, `y="220"`} {
		if !strings.Contains(out, y) {
			t.Errorf("weather line %d: missing %s", i, y)
		}
	}
	if strings.Contains(out, `y="235"`) {
		t.Error("unexpected fifth weather line")
	}
}

func TestRender_WellFormedAndEscaped(t *testing.T) {
	rec := testRecord()
	rec.Location = `<script>alert("x")</script>&`
	out := Render(rec, englishLabels, "a & b")

	if strings.Contains(string(out), "<script>") {
		t.Error("location text was not escaped")
	}

	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("SVG is not well-formed XML: %v", err)
		}
	}
}

func TestRender_UnknownBrowserHasNoVersion(t *testing.T) {
	rec := testRecord()
	rec.Browser = visitor.Browser{Name: visitor.UnknownBrowser}
	out := string(Render(rec, englishLabels, DefaultFooter))

	if !strings.Contains(out, "Browser: unknown<") {
		t.Errorf("unknown browser rendered with version:\n%s", out)
	}
}

func TestRender_PlaceholderWeatherIsOneLine(t *testing.T) {
	rec := testRecord()
	rec.Weather = lookup.WeatherUnavailable
	out := string(Render(rec, englishLabels, DefaultFooter))

	if !strings.Contains(out, lookup.WeatherUnavailable) {
		t.Error("placeholder missing")
	}
	if strings.Contains(out, `y="190"`) {
		t.Error("placeholder rendered on more than one line")
	}
}

func TestRender_ChinesePlaceholders(t *testing.T) {
	rec := testRecord()
	rec.Location = lookup.UnknownLocation
	rec.Weather = lookup.WeatherUnavailable
	rec.Browser = visitor.Browser{Name: visitor.UnknownBrowser}
	rec.OS = visitor.UnknownOS
	out := string(Render(rec, chineseLabels, DefaultFooter))

	for _, want := range []string{"来自: 「未知位置」", "浏览器: 未知浏览器<", "系统: 未知系统<", ">暂无天气信息<"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
	for _, english := range []string{lookup.UnknownLocation, lookup.WeatherUnavailable, visitor.UnknownOS} {
		if strings.Contains(out, english) {
			t.Errorf("card still shows %q", english)
		}
	}
}

func TestBuilder_Build(t *testing.T) {
	loc := &stubLocator{res: lookup.Result{Location: "北京市北京市", Weather: "line1\nline2"}}
	b := NewBuilder(loc, "")
	b.now = func() time.Time { return time.Unix(3*3600+5, 0) }

	h := http.Header{}
	h.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	h.Set("Accept-Language", "zh-CN")

	rec := b.Collect(context.Background(), h)
	if loc.gotIP != "198.51.100.7" {
		t.Errorf("looked up %q, want 198.51.100.7", loc.gotIP)
	}
	if rec.Background != Backgrounds[3] {
		t.Errorf("Background = %s, want %s", rec.Background.ID, Backgrounds[3].ID)
	}
	if rec.Browser.Name != "Firefox" || rec.OS != "Linux" {
		t.Errorf("client info = %+v", rec.ClientInfo)
	}

	out := string(b.Build(context.Background(), h))
	for _, want := range []string{"访客签名卡", "北京市北京市", "line2", DefaultFooter} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q", want)
		}
	}
	if loc.called != 2 {
		t.Errorf("locator called %d times, want 2", loc.called)
	}
}
