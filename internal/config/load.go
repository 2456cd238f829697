package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/tsn-scheduler/core"
	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// LoadNetwork decodes a network input document (spec.md §6) and populates
// a fresh core.Network with its links, frames, and paths. It fails itself
// only on decode / structural errors and on declared Number_* counts that
// do not match the document (BudgetError); spec.md's invariants on
// individual entities (deadline <= period, positive speed, ...) are
// enforced by model.NewFrame and core.Network.AddLink themselves, the same
// division of labor the teacher's LoadNetworkScenario uses ("we rely on KB
// invariants ... rather than re-validating everything here").
func LoadNetwork(r io.Reader) (*core.Network, error) {
	var doc NetworkDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, "network", "decode network document", err)
	}

	net := core.NewNetwork()
	net.SwitchMinimumTime = doc.GeneralInformation.SwitchInformation.MinimumTime
	net.ProtocolPeriod = doc.GeneralInformation.SelfHealingProtocol.Period
	net.ProtocolTime = doc.GeneralInformation.SelfHealingProtocol.Time

	if err := loadLinks(net, doc); err != nil {
		return nil, err
	}
	if err := loadFrames(net, doc); err != nil {
		return nil, err
	}
	if err := loadPaths(net, doc); err != nil {
		return nil, err
	}

	if got := len(doc.Topology.Links); got != doc.GeneralInformation.NumberLinks {
		return nil, xerr.New(xerr.BudgetError, "network", fmt.Sprintf("declared Number_Links=%d but found %d", doc.GeneralInformation.NumberLinks, got))
	}
	if got := len(doc.Frames); got != doc.GeneralInformation.NumberFrames {
		return nil, xerr.New(xerr.BudgetError, "network", fmt.Sprintf("declared Number_Frames=%d but found %d", doc.GeneralInformation.NumberFrames, got))
	}
	if got := countNodesByCategory(doc, "switch"); got != doc.GeneralInformation.NumberSwitches {
		return nil, xerr.New(xerr.BudgetError, "network", fmt.Sprintf("declared Number_Switches=%d but found %d", doc.GeneralInformation.NumberSwitches, got))
	}
	if got := countNodesByCategory(doc, "end_system"); got != doc.GeneralInformation.NumberEndSystems {
		return nil, xerr.New(xerr.BudgetError, "network", fmt.Sprintf("declared Number_End_Systems=%d but found %d", doc.GeneralInformation.NumberEndSystems, got))
	}

	return net, nil
}

func countNodesByCategory(doc NetworkDocument, category string) int {
	n := 0
	for _, node := range doc.Topology.Nodes {
		if node.Category == category {
			n++
		}
	}
	return n
}

func loadLinks(net *core.Network, doc NetworkDocument) error {
	for _, l := range doc.Topology.Links {
		linkType, err := model.ParseLinkType(l.Category)
		if err != nil {
			return xerr.Wrap(xerr.InvalidInput, l.LinkID, "unknown link category", err)
		}
		if err := net.AddLink(model.Link{ID: l.LinkID, Speed: l.Speed, Type: linkType}); err != nil {
			return err
		}
	}
	return nil
}

func loadFrames(net *core.Network, doc NetworkDocument) error {
	for _, fx := range doc.Frames {
		f, err := model.NewFrame(fx.FrameID, fx.Size, fx.Period, fx.Deadline, fx.StartingTime, fx.EndToEnd, fx.SenderID, fx.Receivers)
		if err != nil {
			return err
		}
		if err := net.AddFrame(f); err != nil {
			return err
		}
	}
	return nil
}

func loadPaths(net *core.Network, doc NetworkDocument) error {
	for _, sender := range doc.Topology.Paths {
		for _, receiver := range sender.Receivers {
			for _, raw := range receiver.Paths {
				linkIDs := splitPath(raw)
				if len(linkIDs) == 0 {
					return xerr.New(xerr.InvalidInput, fmt.Sprintf("%s->%s", sender.SenderID, receiver.ReceiverID), "empty path")
				}
				if err := net.AddPath(sender.SenderID, receiver.ReceiverID, linkIDs); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// splitPath splits a semicolon-separated link-id list (spec.md §6),
// dropping any empty segments from stray separators.
func splitPath(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadScheduleConfiguration decodes the solver-tuning input document
// (spec.md §6).
func LoadScheduleConfiguration(r io.Reader) (*ScheduleConfigurationDocument, error) {
	var doc ScheduleConfigurationDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, "schedule_configuration", "decode schedule configuration document", err)
	}
	if doc.Solver != "z3" && doc.Solver != "gurobi" {
		return nil, xerr.New(xerr.InvalidInput, doc.Solver, "unknown solver, expected z3 or gurobi")
	}
	return &doc, nil
}
