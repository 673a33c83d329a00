// Package layout computes rank-based hierarchical positions for pipeline
// graphs.
//
// # Algorithm
//
// [Compute] runs in four steps:
//
//  1. Build the adjacency index with [graph.ToDAG]; edges whose endpoints are
//     missing are dropped and reported in Layout.DanglingEdges, nodes without
//     an ID in Layout.InvalidNodes.
//  2. Assign ranks with Kahn's algorithm ([transform.AssignRanks]). A node's
//     rank is its longest-path distance from any source.
//  3. Group nodes by rank, keeping input order within each rank.
//  4. Spread each rank evenly across the viewport width and stack ranks
//     vertically:
//
//	x = (width / (countInRank + 1)) * (indexInRank + 1) - nodeWidth/2
//	y = rank * (nodeHeight + verticalSpacing) + topMargin
//
// Positions are the top-left corner of each node box. The result depends only
// on the input order of nodes and edges, so identical input always yields
// identical output.
//
// # Cycles
//
// Nodes on or downstream of a cycle never receive a rank. By default they are
// left out of Layout.Nodes and listed in Layout.Unranked. [WithStrict] turns
// this into a CYCLE_DETECTED error (and dangling edges into DANGLING_EDGE);
// [WithBreakCycles] removes back edges before ranking so every node is placed.
//
// # Defaults
//
// With no options Compute uses a 1200×800 viewport, 180×100 nodes, 100px
// vertical spacing and a 50px top margin. Horizontal spacing (80px) is
// carried in [Geometry] for renderers but does not enter the formula.
package layout
