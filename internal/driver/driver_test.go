package driver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/tsn-scheduler/internal/config"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver/smt"
)

const singleFrameNetworkXML = `<Network>
  <General_Information>
    <Number_Frames>1</Number_Frames>
    <Number_Switches>0</Number_Switches>
    <Number_End_Systems>2</Number_End_Systems>
    <Number_Links>1</Number_Links>
    <Switch_Information><Minimum_Time>0</Minimum_Time></Switch_Information>
    <Self-Healing_Protocol><Period>100000</Period><Time>10</Time></Self-Healing_Protocol>
  </General_Information>
  <Topology>
    <Nodes>
      <Node category="end_system"><NodeID>A</NodeID></Node>
      <Node category="end_system"><NodeID>B</NodeID></Node>
    </Nodes>
    <Links>
      <Link category="wired"><LinkID>L1</LinkID><Speed>100</Speed></Link>
    </Links>
    <Paths>
      <Sender>
        <SenderID>A</SenderID>
        <Receivers>
          <Receiver>
            <ReceiverID>B</ReceiverID>
            <Paths><Path>L1</Path></Paths>
          </Receiver>
        </Receivers>
      </Sender>
    </Paths>
  </Topology>
  <Frames>
    <Frame>
      <FrameID>F1</FrameID>
      <Period>1000</Period>
      <Deadline>800</Deadline>
      <Size>100</Size>
      <StartingTime>0</StartingTime>
      <EndToEnd>800</EndToEnd>
      <SenderID>A</SenderID>
      <Receivers><ReceiverID>B</ReceiverID></Receivers>
    </Frame>
  </Frames>
</Network>`

func TestRunSingleFrameProducesFeasibleSchedule(t *testing.T) {
	net, err := config.LoadNetwork(strings.NewReader(singleFrameNetworkXML))
	if err != nil {
		t.Fatalf("LoadNetwork: %v", err)
	}

	cfg := &config.ScheduleConfigurationDocument{
		TimeLimit: 10,
		Solver:    "z3",
	}

	d := New(net, cfg, smt.New(), nil, nil)
	result, params, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if params != nil {
		t.Fatal("expected no tune params in solve mode")
	}
	if result.Status != solver.StatusOptimal && result.Status != solver.StatusFeasible {
		t.Fatalf("expected feasible schedule, got %s", result.Status)
	}
	if result.Schedule == nil || len(result.Schedule.Frames) != 1 {
		t.Fatalf("expected one scheduled frame, got %+v", result.Schedule)
	}

	offsets := result.Schedule.Frames[0].Offsets
	if len(offsets) != 1 {
		t.Fatalf("expected one offset, got %d", len(offsets))
	}
	st := offsets[0].StartTime
	if st < 0 || st > 792 {
		t.Fatalf("start time %d out of [0, 792]", st)
	}
}

func TestRunWritesScheduleFileAtomically(t *testing.T) {
	net, err := config.LoadNetwork(strings.NewReader(singleFrameNetworkXML))
	if err != nil {
		t.Fatalf("LoadNetwork: %v", err)
	}
	cfg := &config.ScheduleConfigurationDocument{TimeLimit: 10, Solver: "z3"}

	d := New(net, cfg, smt.New(), nil, nil)
	result, _, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xml")
	if err := config.WriteSchedule(path, result.Schedule); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}

	reloaded, err := config.ReadSchedule(path)
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(reloaded.Frames) != len(result.Schedule.Frames) {
		t.Fatalf("round trip frame count mismatch: got %d, want %d", len(reloaded.Frames), len(result.Schedule.Frames))
	}
}

const chainInfeasibleNetworkXML = `<Network>
  <General_Information>
    <Number_Frames>1</Number_Frames>
    <Number_Switches>1</Number_Switches>
    <Number_End_Systems>2</Number_End_Systems>
    <Number_Links>2</Number_Links>
    <Switch_Information><Minimum_Time>500</Minimum_Time></Switch_Information>
    <Self-Healing_Protocol><Period>100000</Period><Time>10</Time></Self-Healing_Protocol>
  </General_Information>
  <Topology>
    <Nodes>
      <Node category="end_system"><NodeID>A</NodeID></Node>
      <Node category="switch"><NodeID>B</NodeID></Node>
      <Node category="end_system"><NodeID>C</NodeID></Node>
    </Nodes>
    <Links>
      <Link category="wired"><LinkID>L1</LinkID><Speed>100</Speed></Link>
      <Link category="wired"><LinkID>L2</LinkID><Speed>100</Speed></Link>
    </Links>
    <Paths>
      <Sender>
        <SenderID>A</SenderID>
        <Receivers>
          <Receiver>
            <ReceiverID>C</ReceiverID>
            <Paths><Path>L1;L2</Path></Paths>
          </Receiver>
        </Receivers>
      </Sender>
    </Paths>
  </Topology>
  <Frames>
    <Frame>
      <FrameID>F1</FrameID>
      <Period>1000</Period>
      <Deadline>510</Deadline>
      <Size>100</Size>
      <StartingTime>0</StartingTime>
      <EndToEnd>510</EndToEnd>
      <SenderID>A</SenderID>
      <Receivers><ReceiverID>C</ReceiverID></Receivers>
    </Frame>
  </Frames>
</Network>`

// TestRunInfeasibleDoesNotPopulateSchedule exercises spec.md §8's
// "Infeasible" scenario: switch_minimum_time (500) plus the first link's
// timeslots (8) leaves no room for a 510ns deadline across a two-link
// chain, so the path-ordering constraint cannot be satisfied.
func TestRunInfeasibleDoesNotPopulateSchedule(t *testing.T) {
	net, err := config.LoadNetwork(strings.NewReader(chainInfeasibleNetworkXML))
	if err != nil {
		t.Fatalf("LoadNetwork: %v", err)
	}
	cfg := &config.ScheduleConfigurationDocument{TimeLimit: 10, Solver: "z3"}

	d := New(net, cfg, smt.New(), nil, nil)
	result, _, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != solver.StatusInfeasible && result.Status != solver.StatusTimeout {
		t.Fatalf("expected infeasible/timeout for a too-tight deadline across a switch, got %s", result.Status)
	}
	if result.Schedule != nil {
		t.Fatal("expected no schedule document on infeasibility")
	}
}
