package parser

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are stripped from the document before any structural probe
// runs, so chrome elements (navigation, sidebars) never get mistaken for
// listing rows (spec.md §4.4 step 3). Breadcrumbs are stripped later, by
// dispatchSimple, once the Pure/Godir probe has read them.
const noiseSelectors = "#sidebar, nav"

// dispatch implements C5: the fully ordered dialect dispatcher. It runs the
// host gate and Google-Drive script scan first since a match there delegates
// the whole page to a remote backend, strips noise, then tries the structural extractors in the order
// spec.md §4.4 lists them: preformatted text, then the named single-purpose
// dialects (including the breadcrumb-gated Pure/Godir probe), then the
// generic table fallback only once every more specific table dialect has
// had a chance to claim the page, then the JavaScript-drawn and anchor-only
// fallbacks. It always attempts the Model-01 probe regardless of whether an
// earlier probe already matched (spec.md §4.7's independent markup
// footprint), and finally falls back to a <noscript> diagnostic.
func dispatch(ctx context.Context, shell *ParsedDirectory, html string, base *url.URL, client HTTPClient, clamp *MaxThreadsClamp, preFamily []preRegex) (*ParsedDirectory, error) {
	if d := hostGate(base); d != DialectUnknown {
		return remoteDelegateResult(shell, d), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, newParseError(KindParseFailure, shell.URL, err)
	}

	if d := detectGoogleDriveScript(ctx, doc, base, client); d != DialectUnknown {
		if clamp != nil {
			clamp.ClampToOne()
		}
		return remoteDelegateResult(shell, d), nil
	}

	doc.Find(noiseSelectors).Remove()

	var result *ParsedDirectory
	var matched bool

	if result, matched = dispatchPreFormatted(doc, shell, base, preFamily); !matched {
		if result, matched = dispatchSimple(doc, shell, base); !matched {
			if result, matched, err = dispatchGenericTables(doc, shell, base); err != nil {
				return nil, err
			}
			if !matched {
				if result, matched = dispatchJavaScriptDrawn(doc, shell, base); !matched {
					result, matched = dispatchAnchorOnly(doc, shell, base)
				}
			}
		}
	}

	if modelResult, ok := dispatchModel01(ctx, doc, shell, base, client); ok {
		if !matched {
			result, matched = modelResult, true
		} else {
			result.Subdirectories = append(result.Subdirectories, modelResult.Subdirectories...)
			result.Files = append(result.Files, modelResult.Files...)
		}
	}

	if !matched {
		if doc.Find("noscript").Length() > 0 {
			return nil, friendlyf("page requires JavaScript to render its listing")
		}
		return nil, friendlyf("no recognized directory listing markup at %s", shell.URL)
	}

	result.ParsedSuccessfully = true
	return result, nil
}
