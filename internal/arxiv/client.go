package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/csheth/dumpling/internal/paper"
)

const (
	defaultAPIURL = "https://export.arxiv.org/api/query"
	defaultPDFURL = "https://arxiv.org/pdf"
)

// ErrNotFound is returned when the API knows no paper with the identifier.
var ErrNotFound = errors.New("arxiv: paper not found")

// Record represents a subset of metadata returned by the arXiv API.
type Record struct {
	ID               string
	Title            string
	Authors          []string
	Abstract         string
	Subjects         []string
	Year             int
	KeyContributions []string
	PDFURL           string
}

// Client talks to the arXiv export API.
type Client struct {
	HTTP   *http.Client
	APIURL string
	PDFURL string
}

// NewClient returns a client for the public arXiv endpoints.
func NewClient() *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: 10 * time.Second},
		APIURL: defaultAPIURL,
		PDFURL: defaultPDFURL,
	}
}

var (
	idRegexp             = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([0-9a-z.\-]+)(?:\.pdf)?`)
	bareIDRegexp         = regexp.MustCompile(`^[0-9a-z.\-]+$`)
	versionSuffix        = regexp.MustCompile(`v[0-9]+$`)
	extraneousWhitespace = regexp.MustCompile(`\s+`)
)

// Lookup fetches metadata for a given arXiv URL or identifier and derives key
// contributions from the abstract.
func (c *Client) Lookup(ctx context.Context, input string) (*Record, error) {
	id := ExtractIdentifier(input)
	if id == "" {
		return nil, fmt.Errorf("unable to extract arXiv identifier from %q", input)
	}

	url := fmt.Sprintf("%s?id_list=%s", c.APIURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("arxiv API error: %s (%s)", resp.Status, string(body))
	}

	entry, err := decodeEntry(resp.Body)
	if err != nil {
		return nil, err
	}
	// The API answers unknown identifiers with a single error entry.
	if entry == nil || strings.TrimSpace(entry.Title) == "" || strings.EqualFold(strings.TrimSpace(entry.Title), "error") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, strings.TrimSpace(a.Name))
	}

	abstract := normalizeWhitespace(entry.Summary)

	subjects := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		subjects = append(subjects, strings.TrimSpace(cat.Term))
	}

	return &Record{
		ID:               id,
		Title:            normalizeWhitespace(entry.Title),
		Authors:          authors,
		Abstract:         abstract,
		Subjects:         subjects,
		Year:             publishedYear(entry.Published),
		KeyContributions: extractKeyContributions(abstract),
		PDFURL:           fmt.Sprintf("%s/%s.pdf", strings.TrimRight(c.PDFURL, "/"), id),
	}, nil
}

// DocName is the file name the record's PDF is stored under.
func (r *Record) DocName() string {
	return sanitizeKey(r.ID) + ".pdf"
}

// CitationKey builds a bibtex key from the first author's surname, the year
// and the first significant title word.
func (r *Record) CitationKey() string {
	var b strings.Builder
	if len(r.Authors) > 0 {
		fields := strings.Fields(r.Authors[0])
		if len(fields) > 0 {
			b.WriteString(keyWord(fields[len(fields)-1]))
		}
	}
	if r.Year > 0 {
		b.WriteString(strconv.Itoa(r.Year))
	}
	for _, word := range strings.Fields(r.Title) {
		w := keyWord(word)
		if len(w) > 3 {
			b.WriteString(w)
			break
		}
	}
	if b.Len() == 0 {
		return "arxiv" + keyWord(r.ID)
	}
	return b.String()
}

func keyWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Bibtex renders the record as a @misc entry in the form arXiv itself exports.
func (r *Record) Bibtex() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", r.CitationKey())
	fmt.Fprintf(&b, "  title={%s},\n", r.Title)
	if len(r.Authors) > 0 {
		fmt.Fprintf(&b, "  author={%s},\n", strings.Join(r.Authors, " and "))
	}
	if r.Year > 0 {
		fmt.Fprintf(&b, "  year={%d},\n", r.Year)
	}
	fmt.Fprintf(&b, "  eprint={%s},\n", versionSuffix.ReplaceAllString(r.ID, ""))
	b.WriteString("  archivePrefix={arXiv},\n")
	if len(r.Subjects) > 0 {
		fmt.Fprintf(&b, "  primaryClass={%s},\n", r.Subjects[0])
	}
	fmt.Fprintf(&b, "  url={https://arxiv.org/abs/%s}\n", r.ID)
	b.WriteString("}")
	return b.String()
}

// Paper converts the record into a bibliography entry carrying tags.
func (r *Record) Paper(tags []string, docName string) paper.Paper {
	p := paper.New(r.Title, r.Year, r.Authors, tags)
	p.Description = strings.Join(r.KeyContributions, " ")
	p.Bibtex = r.Bibtex()
	p.DocName = docName
	p.Journal = "arXiv"
	return p
}

// ExtractIdentifier returns the arXiv identifier in a URL or bare id, or "".
func ExtractIdentifier(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if len(input) > 4 && strings.EqualFold(input[len(input)-4:], ".pdf") {
		input = input[:len(input)-4]
	}
	if matches := idRegexp.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1]
	}
	// Accept bare identifiers such as 2101.00001
	if len(input) >= len("arxiv:") && strings.EqualFold(input[:len("arxiv:")], "arxiv:") {
		input = input[len("arxiv:"):]
	}
	input = strings.TrimSpace(input)
	if bareIDRegexp.MatchString(input) {
		return input
	}
	return ""
}

type apiFeed struct {
	Entries []apiEntry `xml:"entry"`
}

type apiEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Authors    []apiAuthor   `xml:"author"`
	Categories []apiCategory `xml:"category"`
}

type apiAuthor struct {
	Name string `xml:"name"`
}

type apiCategory struct {
	Term string `xml:"term,attr"`
}

func decodeEntry(reader io.Reader) (*apiEntry, error) {
	var feed apiFeed
	if err := xml.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode arxiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}
	return &feed.Entries[0], nil
}

func publishedYear(published string) int {
	published = strings.TrimSpace(published)
	if t, err := time.Parse(time.RFC3339, published); err == nil {
		return t.Year()
	}
	if len(published) >= 4 {
		if y, err := strconv.Atoi(published[:4]); err == nil {
			return y
		}
	}
	return 0
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func extractKeyContributions(abstract string) []string {
	if abstract == "" {
		return nil
	}
	sentences := splitSentences(abstract)
	if len(sentences) == 0 {
		return []string{abstract}
	}

	type candidate struct {
		text  string
		score int
		idx   int
	}

	keywordWeights := map[string]int{
		"propose": 4, "introduce": 4, "present": 3, "demonstrate": 3, "show": 2,
		"evaluate": 2, "achieve": 3, "model": 2, "framework": 3, "method": 3,
		"state-of-the-art": 4, "outperform": 4, "improv": 2, "approach": 2,
		"architecture": 2, "pipeline": 2, "result": 1, "experiment": 1,
	}

	candidates := make([]candidate, 0, len(sentences))
	for idx, sentence := range sentences {
		lower := strings.ToLower(sentence)
		score := 0
		for keyword, weight := range keywordWeights {
			if strings.Contains(lower, keyword) {
				score += weight
			}
		}
		if strings.Contains(lower, "we ") || strings.Contains(lower, "our ") {
			score++
		}
		if idx == 0 {
			score++
		}
		if len(sentence) < 40 {
			score--
		}
		candidates = append(candidates, candidate{text: sentence, score: score, idx: idx})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].idx < candidates[j].idx
		}
		return candidates[i].score > candidates[j].score
	})

	// Keep at most three, then restore abstract order so the description reads
	// naturally.
	picked := []candidate{}
	for _, cand := range candidates {
		if len(picked) == 3 {
			break
		}
		if cand.score <= 0 && len(picked) >= 1 {
			continue
		}
		picked = append(picked, cand)
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].idx < picked[j].idx })

	results := make([]string, 0, len(picked))
	for _, cand := range picked {
		results = append(results, cand.text)
	}
	if len(results) == 0 {
		return []string{abstract}
	}
	return results
}

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	for idx, r := range text {
		if idx < start {
			continue
		}
		if r == '.' || r == '!' || r == '?' {
			end := idx + utf8.RuneLen(r)
			segment := strings.TrimSpace(text[start:end])
			if segment != "" {
				sentences = append(sentences, segment)
			}
			start = end
			for start < len(text) {
				nextRune, size := utf8.DecodeRuneInString(text[start:])
				if unicode.IsSpace(nextRune) {
					start += size
					continue
				}
				break
			}
		}
	}
	if start < len(text) {
		if segment := strings.TrimSpace(text[start:]); segment != "" {
			sentences = append(sentences, segment)
		}
	}
	return sentences
}
