// Package site turns the content service into output files.
//
// A build runs the stages fetch, assets, render and write for every configured
// language. Languages build concurrently, bounded by build.concurrency; the stages
// of one language run in order and the first fatal stage error ends that
// language. The outcome of every language is collected in a BuildReport, which is
// persisted next to the output as build-report.json and build-report.txt.
//
// Two writers are provided: HTMLWriter renders a complete static site through
// html/template layouts, HugoWriter emits Hugo content files with YAML front
// matter carrying a content fingerprint.
package site
