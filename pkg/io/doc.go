// Package io reads and writes the JSON graph descriptions used by wayfinder.
//
// # Building descriptions
//
// A building file maps floor numbers to the rooms declared on that floor:
//
//	{
//	  "0": [
//	    {"id": "eP1_1", "neighbors": [{"id": "H1", "weight": 3, "direction": "straight"}]},
//	    {"id": "H1", "neighbors": [
//	      {"id": "E101", "weight": 2, "direction": {"null": "left", "eP1_1": "right"}}
//	    ]},
//	    {"id": "E101", "name": "Lab 101"}
//	  ],
//	  "1": [...]
//	}
//
// Ids and predecessor keys are raw; [ReadBuilding] qualifies them with the
// floor they appear on. Any key other than id, name and neighbors is kept
// as node metadata. The building name is the file's base name.
//
// # Campus descriptions
//
// A campus file holds a single campus keyed by its name:
//
//	{"Solbosch": [
//	  {"id": "c1", "latitude": 50.8125, "longitude": 4.3810,
//	   "neighbors": [{"id": "eP1_1", "weight": 40}]}
//	]}
//
// [DecodeCampus] keeps the description editable so [RecomputeWeights] can
// rewrite edge weights from coordinates before [WriteCampus] saves it back.
//
// # Sites
//
// [LoadSite] loads the campus and every configured building into a
// [graph.Site] ready for routing.
package io
