// Package io reads and writes node lists.
//
// Two formats are supported:
//
//   - txt: one node per line. Link nodes are written verbatim
//     ("vmess://..."); every other node is written as
//     "type server:port name".
//   - json: an indented array of node objects, the same shape [node.Node]
//     marshals to:
//
//	[
//	  {
//	    "type": "ss",
//	    "name": "hk-01",
//	    "server": "1.2.3.4",
//	    "port": 8388,
//	    "config": {"cipher": "aes-128-gcm", ...},
//	    "origin": {"repo": "freefq/free", "branch": "master", "path": "clash.yaml"}
//	  },
//	  {"type": "url", "name": "raw-link", "config": {"link": "ss://..."}}
//	]
//
// Use [WriteText] / [WriteJSON] for any io.Writer, [ExportText] /
// [ExportJSON] for files, and [Encode] to pick the format by name. JSON
// output round-trips through [ReadJSON] and [ImportJSON].
package io
