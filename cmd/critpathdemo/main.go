// Command critpathdemo drives a small synthetic build through the
// buildsignals engine end to end and prints the resulting summary. It
// exists to exercise Scope, both critical-path backends, and load
// enrichment without needing a real build engine attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/distr1/buildsignals"
	"github.com/google/uuid"
)

// demoEngineKey adapts a buildsignals.NodeKey to the opaque
// buildsignals.EngineKey interface the activation tracker expects, the
// same self-classifying role a real build engine's key type would play.
type demoEngineKey struct {
	key buildsignals.NodeKey
}

func (k demoEngineKey) AsNodeKey() (buildsignals.NodeKey, bool) { return k.key, true }

func engineKeys(keys ...buildsignals.NodeKey) []buildsignals.EngineKey {
	out := make([]buildsignals.EngineKey, len(keys))
	for i, k := range keys {
		out[i] = demoEngineKey{key: k}
	}
	return out
}

func main() {
	fs := flag.NewFlagSet("critpathdemo", flag.ExitOnError)
	backendFlag := fs.String("backend", "longest-path-graph", `critical-path backend: "default" or "longest-path-graph"`)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	backendName, err := buildsignals.ParseBackendName(*backendFlag)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := buildsignals.InterruptibleContext()
	defer cancel()

	publisher := buildsignals.SummaryPublisherFunc(printSummary)
	logger := log.New(os.Stderr, "critpathdemo: ", 0)

	_, err = buildsignals.Scope(publisher, backendName, logger, func(installer buildsignals.Installer) (struct{}, error) {
		runSyntheticBuild(ctx, installer)
		return struct{}{}, nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

// runSyntheticBuild reports a small, fixed build shape: two package
// loads (the second reached transitively by the first, exercising load
// enrichment), one analysis, two chained actions (link depends on
// compile), and a final materialization -- enough to exercise both backends and
// produce a non-trivial critical path.
func runSyntheticBuild(ctx context.Context, installer buildsignals.Installer) {
	owner := buildsignals.TargetLabel("//demo:" + uuid.NewString()[:8])
	pkgRoot := buildsignals.PackageLabel("demo/root")
	pkgLib := buildsignals.PackageLabel("demo/lib")

	tracker := installer.ActivationTracker

	tracker.KeyActivated(
		demoEngineKey{key: buildsignals.InterpreterResultsKey(pkgRoot)},
		nil,
		buildsignals.EvaluatedInterpreterResults(buildsignals.InterpreterResultsKeyActivation{
			Duration: 50 * time.Millisecond,
			Result:   &buildsignals.LoadResult{DepPackages: []buildsignals.PackageLabel{pkgLib}},
		}),
	)
	tracker.KeyActivated(
		demoEngineKey{key: buildsignals.InterpreterResultsKey(pkgLib)},
		nil,
		buildsignals.EvaluatedInterpreterResults(buildsignals.InterpreterResultsKeyActivation{
			Duration: 20 * time.Millisecond,
		}),
	)

	analysisKey := buildsignals.AnalysisKey(owner)
	tracker.KeyActivated(
		demoEngineKey{key: analysisKey},
		engineKeys(buildsignals.InterpreterResultsKey(pkgRoot)),
		buildsignals.EvaluatedAnalysis(buildsignals.AnalysisKeyActivation{Duration: 5 * time.Millisecond}),
	)

	compileAction := buildsignals.ActionKeyID{Owner: owner, Identifier: "compile"}
	linkAction := buildsignals.ActionKeyID{Owner: owner, Identifier: "link"}

	compileKey := buildsignals.BuildKey(compileAction)
	tracker.KeyActivated(
		demoEngineKey{key: compileKey},
		engineKeys(analysisKey),
		buildsignals.EvaluatedBuildKey(buildsignals.BuildKeyActivation{
			Action:   buildsignals.ActionHandle{Owner: owner, Category: "compile", Identifier: "compile"},
			Duration: buildsignals.NodeDuration{User: 800 * time.Millisecond, Total: time.Second},
		}),
	)

	linkKey := buildsignals.BuildKey(linkAction)
	tracker.KeyActivated(
		demoEngineKey{key: linkKey},
		engineKeys(compileKey),
		buildsignals.EvaluatedBuildKey(buildsignals.BuildKeyActivation{
			Action:   buildsignals.ActionHandle{Owner: owner, Category: "link", Identifier: "link"},
			Duration: buildsignals.NodeDuration{User: 300 * time.Millisecond, Total: 400 * time.Millisecond},
		}),
	)

	installer.BuildSignals.TopLevelTarget(owner, []buildsignals.ArtifactGroup{
		{Kind: buildsignals.ArtifactGroupArtifact, Action: linkAction},
	})

	artifact := buildsignals.ArtifactID{Owner: owner, Path: "bin/demo"}
	installer.BuildSignals.FinalMaterialization(artifact, buildsignals.NodeDuration{
		User:  10 * time.Millisecond,
		Total: 15 * time.Millisecond,
	}, nil)

	select {
	case <-ctx.Done():
	default:
	}
}

func printSummary(s buildsignals.Summary) {
	fmt.Printf("backend=%s nodes=%d edges=%d durations_are_total=%v\n", s.Backend, s.NumNodes, s.NumEdges, s.DurationsAreTotal)
	for _, e := range s.Entries {
		potential := "-"
		if e.PotentialImprovement != nil {
			potential = e.PotentialImprovement.String()
		}
		fmt.Printf("  %-24s dur=%-10s user=%-10s total=%-10s potential=%s\n",
			e.Description, e.CriticalPathDuration, e.UserDuration, e.TotalDuration, potential)
	}
}
