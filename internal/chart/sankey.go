// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/reportkit/internal/models"
)

const (
	// sankeyTopDestinations is how many outgoing transitions each node keeps per step.
	sankeyTopDestinations = 3
	// sankeyMinLinkPercent drops links carrying less than this share of sessions.
	sankeyMinLinkPercent = 0.25
)

// SankeyNodeID is the id of an event node at a given journey step.
func SankeyNodeID(event string, step int) string {
	return fmt.Sprintf("%s::step%d", event, step)
}

type sankeyNodeData struct {
	id    string
	event string
	value float64
	step  int
	color string
}

// BuildSankey grows a journey graph step by step from the entry events,
// following each active node's top destinations. Links below the minimum
// share of totalSessions are dropped, and terminal nodes with the same
// event are merged into one "<event>::final" node. Output order is
// deterministic: nodes by step then value, links in discovery order.
func BuildSankey(transitions []models.SankeyTransition, entries []models.SankeyEntry, totalSessions float64, steps int) models.SankeyResult {
	out := models.SankeyResult{Nodes: []models.SankeyNode{}, Links: []models.SankeyLink{}, TotalSessions: totalSessions}
	if len(transitions) == 0 {
		return out
	}

	nodes := make(map[string]*sankeyNodeData)
	var nodeOrder []string
	addNode := func(n *sankeyNodeData) {
		nodes[n.id] = n
		nodeOrder = append(nodeOrder, n.id)
	}

	byStep := make(map[int][]models.SankeyTransition)
	for _, t := range transitions {
		byStep[t.Step] = append(byStep[t.Step], t)
	}

	type active struct{ event, nodeID string }
	var current []active
	for i, e := range entries {
		id := SankeyNodeID(e.Event, 1)
		if _, exists := nodes[id]; exists {
			continue
		}
		addNode(&sankeyNodeData{id: id, event: e.Event, value: e.Count, step: 1, color: ColorFor(i)})
		current = append(current, active{event: e.Event, nodeID: id})
	}

	type rawLink struct {
		source, target string
		value          float64
	}
	var links []rawLink

	for step := 1; step < steps && len(current) > 0; step++ {
		stepTransitions := byStep[step]
		var next []active
		seen := make(map[string]int)

		for _, src := range current {
			var from []models.SankeyTransition
			for _, t := range stepTransitions {
				if t.Source == src.event {
					from = append(from, t)
				}
			}
			sort.SliceStable(from, func(a, b int) bool { return from[a].Value > from[b].Value })
			if len(from) > sankeyTopDestinations {
				from = from[:sankeyTopDestinations]
			}

			for _, t := range from {
				if t.Source == t.Target {
					continue
				}
				targetID := SankeyNodeID(t.Target, step+1)
				links = append(links, rawLink{source: src.nodeID, target: targetID, value: t.Value})

				if existing, ok := nodes[targetID]; ok {
					existing.value += t.Value
				} else {
					color := ColorFor(len(nodes))
					if sn, ok := nodes[src.nodeID]; ok && sn.color != "" {
						color = sn.color
					}
					addNode(&sankeyNodeData{id: targetID, event: t.Target, value: t.Value, step: step + 1, color: color})
				}

				if i, ok := seen[t.Target]; ok {
					next[i].nodeID = targetID
				} else {
					seen[t.Target] = len(next)
					next = append(next, active{event: t.Target, nodeID: targetID})
				}
			}
		}
		current = next
	}

	minLink := math.Ceil(totalSessions * sankeyMinLinkPercent / 100)
	var kept []rawLink
	referenced := make(map[string]bool)
	inbound := make(map[string]float64)
	hasOutgoing := make(map[string]bool)
	for _, l := range links {
		if l.value < minLink {
			continue
		}
		kept = append(kept, l)
		referenced[l.source] = true
		referenced[l.target] = true
		inbound[l.target] += l.value
		hasOutgoing[l.source] = true
	}
	for _, id := range nodeOrder {
		if nodes[id].step == 1 && !hasOutgoing[id] {
			delete(referenced, id)
		}
	}

	var finalNodes []models.SankeyNode
	for _, id := range nodeOrder {
		if !referenced[id] {
			continue
		}
		n := nodes[id]
		value := n.value
		if n.step != 1 {
			if v, ok := inbound[id]; ok && v != 0 {
				value = v
			}
		}
		finalNodes = append(finalNodes, models.SankeyNode{
			ID:    id,
			Label: n.event,
			Step:  n.step,
			Value: value,
			Color: n.color,
		})
	}
	sortSankeyNodes(finalNodes)

	nodeIDs := make(map[string]bool, len(finalNodes))
	for _, n := range finalNodes {
		nodeIDs[n.ID] = true
	}
	var valid []rawLink
	sources := make(map[string]bool)
	for _, l := range kept {
		if nodeIDs[l.source] && nodeIDs[l.target] {
			valid = append(valid, l)
			sources[l.source] = true
		}
	}

	// Terminal nodes sharing an event collapse into one node at their deepest step.
	terminalByEvent := make(map[string][]models.SankeyNode)
	var eventOrder []string
	for _, n := range finalNodes {
		if sources[n.ID] {
			continue
		}
		if _, ok := terminalByEvent[n.Label]; !ok {
			eventOrder = append(eventOrder, n.Label)
		}
		terminalByEvent[n.Label] = append(terminalByEvent[n.Label], n)
	}
	remap := make(map[string]string)
	var merged []models.SankeyNode
	for _, event := range eventOrder {
		group := terminalByEvent[event]
		if len(group) < 2 {
			continue
		}
		m := models.SankeyNode{ID: event + "::final", Label: event, Color: group[0].Color}
		for _, n := range group {
			m.Value += n.Value
			if n.Step > m.Step {
				m.Step = n.Step
			}
			remap[n.ID] = m.ID
		}
		merged = append(merged, m)
	}

	all := make([]models.SankeyNode, 0, len(finalNodes)+len(merged))
	for _, n := range finalNodes {
		if _, gone := remap[n.ID]; !gone {
			all = append(all, n)
		}
	}
	all = append(all, merged...)
	sortSankeyNodes(all)

	present := make(map[string]bool, len(all))
	for _, n := range all {
		present[n.ID] = true
	}
	linkIndex := make(map[string]int)
	var outLinks []models.SankeyLink
	for _, l := range valid {
		source, target := l.source, l.target
		if r, ok := remap[source]; ok {
			source = r
		}
		if r, ok := remap[target]; ok {
			target = r
		}
		if !present[source] || !present[target] {
			continue
		}
		key := source + "->" + target
		if i, ok := linkIndex[key]; ok {
			outLinks[i].Value += l.value
			continue
		}
		linkIndex[key] = len(outLinks)
		outLinks = append(outLinks, models.SankeyLink{Source: source, Target: target, Value: l.value})
	}

	out.Nodes = all
	if outLinks != nil {
		out.Links = outLinks
	}
	for i := range out.Nodes {
		out.Nodes[i].Percentage = Percent(out.Nodes[i].Value, totalSessions)
	}
	return SankeyShares(out)
}

func sortSankeyNodes(nodes []models.SankeyNode) {
	sort.SliceStable(nodes, func(a, b int) bool {
		if nodes[a].Step != nodes[b].Step {
			return nodes[a].Step < nodes[b].Step
		}
		return nodes[a].Value > nodes[b].Value
	})
}

// SankeyShares fills the link percentages. When TotalSessions is unset it is
// derived from the step-1 node values, or from all node values when no node
// sits at step 1. Every division is guarded.
func SankeyShares(result models.SankeyResult) models.SankeyResult {
	byID := make(map[string]float64, len(result.Nodes))
	var entryTotal, allTotal float64
	hasEntry := false
	for _, n := range result.Nodes {
		byID[n.ID] = n.Value
		allTotal += n.Value
		if n.Step == 1 {
			entryTotal += n.Value
			hasEntry = true
		}
	}
	if result.TotalSessions == 0 {
		if hasEntry {
			result.TotalSessions = entryTotal
		} else {
			result.TotalSessions = allTotal
		}
	}

	links := make([]models.SankeyLink, len(result.Links))
	for i, l := range result.Links {
		l.Pct = Percent(l.Value, result.TotalSessions)
		l.ShareOfSource = Percent(l.Value, byID[l.Source])
		links[i] = l
	}
	result.Links = links
	return result
}
