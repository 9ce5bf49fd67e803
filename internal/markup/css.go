package markup

import "html/template"

const baseCSS template.CSS = `
body {
  font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  margin: 0;
  background: #f5f6f8;
  color: #1c1c1c;
}
body > header {
  padding: 1rem 2rem;
  background: #232f3e;
  color: white;
}
.header-top {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 1rem;
  flex-wrap: wrap;
}
.header-actions {
  display: flex;
  gap: 0.5rem;
  flex-wrap: wrap;
}
.container {
  padding: 1rem 2rem 3rem;
}
.entry {
  background: white;
  border-radius: 8px;
  box-shadow: 0 1px 3px rgba(0,0,0,0.08);
  padding: 1rem;
  margin-bottom: 1rem;
  border-left: 4px solid transparent;
}
.entry > header {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  gap: 1rem;
  margin-bottom: 0.5rem;
}
.entry .summary {
  color: #6c757d;
  margin-left: 0.5rem;
}
.entry-system { border-color: #6c757d; }
.entry-user { border-color: #007bff; }
.entry-assistant { border-color: #6f42c1; }
.entry-tool { border-color: #e36209; }
.entry-metric { border-color: #198754; }
.entry-error { border-color: #dc3545; }
pre {
  background: #1e1e1e;
  color: #f8f8f2;
  padding: 0.75rem;
  overflow-x: auto;
  border-radius: 6px;
  margin: 0.25rem 0;
}
pre.text {
  background: none;
  color: inherit;
  padding: 0;
  white-space: pre-wrap;
  font-family: inherit;
}
.null, .empty {
  color: #adb5bd;
  font-style: italic;
}
.kv-table, .data-table {
  width: 100%;
  border-collapse: collapse;
  margin: 0.5rem 0;
}
.kv-table th, .kv-table td,
.data-table th, .data-table td {
  padding: 0.35rem 0.5rem;
  border-bottom: 1px solid #e5e5e5;
  vertical-align: top;
  text-align: left;
}
.kv-table th {
  width: 180px;
  color: #495057;
  background: #f8f9fa;
}
.data-table thead th {
  background: #f8f9fa;
}
.list-nested {
  margin: 0.25rem 0 0.25rem 1.25rem;
  padding-left: 1rem;
}
.list-nested li {
  margin-bottom: 0.35rem;
}
.plan-board {
  background: #f8f9fb;
  border-radius: 6px;
  padding: 0.75rem;
  margin: 0.5rem 0;
  border: 1px solid #e3e7ed;
}
.plan-board h4 {
  margin: 0 0 0.5rem;
}
.plan-board ol {
  margin: 0;
  padding-left: 1.25rem;
}
.status-chip {
  display: inline-block;
  padding: 0.1rem 0.6rem;
  border-radius: 999px;
  font-size: 0.8rem;
  margin-right: 0.5rem;
  text-transform: capitalize;
  background: #e9ecef;
  color: #495057;
}
.status-chip.status-in_progress { background: #fff3cd; color: #7c5b07; }
.status-chip.status-completed, .status-chip.status-done { background: #d1e7dd; color: #0f5132; }
.status-chip.status-error, .status-chip.status-failed { background: #f8d7da; color: #842029; }
.code-block {
  margin: 0.5rem 0;
}
.code-lang {
  font-size: 0.78rem;
  color: #6c757d;
  text-transform: uppercase;
  letter-spacing: 0.05em;
  margin-bottom: 0.25rem;
}
.meta-toggle, .nav-button {
  border: none;
  background: #ffc107;
  color: #1c1c1c;
  padding: 0.5rem 1rem;
  border-radius: 999px;
  cursor: pointer;
  font-weight: 600;
  text-decoration: none;
  display: inline-flex;
  align-items: center;
}
.nav-button { background: #0d6efd; color: white; }
.nav-button.secondary { background: #6c757d; }
body.meta-hidden .entry.collapsible-meta {
  display: none;
}
.panel {
  background: white;
  border-radius: 8px;
  box-shadow: 0 1px 3px rgba(0,0,0,0.08);
  padding: 1rem;
  margin-bottom: 1rem;
}
.panel h2 { margin-top: 0; }
.uploads-table {
  width: 100%;
  border-collapse: collapse;
}
.uploads-table th, .uploads-table td {
  border-bottom: 1px solid #e5e5e5;
  padding: 0.35rem 0.5rem;
  text-align: left;
  vertical-align: top;
}
.uploads-table th { background: #f8f9fa; }
.diff-card {
  background: white;
  border-radius: 8px;
  padding: 1rem;
  margin-bottom: 1rem;
  box-shadow: 0 1px 3px rgba(0,0,0,0.08);
  border-left: 4px solid #0d6efd;
}
.diff-card h3 { margin: 0 0 0.5rem; }
.error-banner {
  background: #f8d7da;
  color: #842029;
  padding: 0.75rem 1rem;
  border-radius: 6px;
}
.diff-block {
  background: #0b0d12;
  color: #e6edf3;
  font-family: "SFMono-Regular", Consolas, Menlo, monospace;
  font-size: 0.9rem;
  line-height: 1.35;
  white-space: pre;
}
.diff-block span {
  display: block;
  padding: 0 0.35rem;
  border-radius: 4px;
}
.diff-add { background: rgba(46, 160, 67, 0.25); color: #7ee787; }
.diff-del { background: rgba(248, 81, 73, 0.25); color: #ffaba8; }
.diff-hunk { color: #79c0ff; }
.diff-file { color: #ffa657; }
.diff-context { color: #c9d1d9; }
`
