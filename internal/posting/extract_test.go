package posting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indeedHTML = `
<html><body>
<h1 class="jobsearch-JobInfoHeader-title">Senior Go Developer</h1>
<div data-testid="jobsearch-CompanyInfoContainer">Acme Robotics
<span>4.2 stars</span>
</div>
<div id="jobDescriptionText">
<p>We build autonomous warehouse robots and need a senior Go developer.</p>
<p>You will own services end to end.</p>
</div>
</body></html>`

func TestParseHTML_SiteSelectors(t *testing.T) {
	p, err := ParseHTML(indeedHTML, "https://www.indeed.com/viewjob?jk=123")
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Developer", p.JobTitle)
	assert.Equal(t, "Acme Robotics", p.Company)
	assert.Contains(t, p.JobDesc, "autonomous warehouse robots")
	assert.Contains(t, p.JobDesc, "own services end to end")
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=123", p.JobURL)
}

const genericHTML = `
<html><head>
<title>Jobs at SmallCo</title>
<meta property="og:site_name" content="SmallCo Careers">
</head><body>
<nav>Home | Jobs | About</nav>
<h1>Platform Engineer</h1>
<main>
<p>SmallCo is looking for a platform engineer to run our Kubernetes fleet.</p>
<p>You will design deployment tooling and on-call processes.</p>
</main>
<footer>© SmallCo</footer>
</body></html>`

func TestParseHTML_GenericHeuristics(t *testing.T) {
	p, err := ParseHTML(genericHTML, "https://jobs.smallco.example/platform")
	require.NoError(t, err)

	assert.Equal(t, "Platform Engineer", p.JobTitle)
	assert.Equal(t, "SmallCo Careers", p.Company)
	assert.Contains(t, p.JobDesc, "Kubernetes fleet")
	assert.NotContains(t, p.JobDesc, "Home | Jobs")
	assert.NotContains(t, p.JobDesc, "©")
}

func TestParseHTML_CompanyFallsBackToHostname(t *testing.T) {
	html := `<html><body><h1>Engineer</h1><main>` + strings.Repeat("desc ", 30) + `</main></body></html>`

	p, err := ParseHTML(html, "https://www.bigco.example/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, "bigco.example", p.Company)
}

func TestParseHTML_EmptyDocument(t *testing.T) {
	p, err := ParseHTML("<html><body></body></html>", "https://empty.example/")
	require.NoError(t, err)

	// Parsing succeeds but validation rejects the empty result.
	assert.Error(t, p.Validate())
}

func TestCleanWhitespace(t *testing.T) {
	in := "  line one  \n\n\t\n   line two\n"
	assert.Equal(t, "line one\nline two", cleanWhitespace(in))
}
