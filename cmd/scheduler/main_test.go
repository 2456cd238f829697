package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/tsn-scheduler/internal/config"
)

const integrationNetworkXML = `<Network>
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

const integrationConfigXML = `<ScheduleConfiguration>
  <TimeLimit>10</TimeLimit>
  <Optimization>0</Optimization>
  <PathSelector>0</PathSelector>
  <FrameDistanceWeigth>0</FrameDistanceWeigth>
  <LinkDistanceWeigth>0</LinkDistanceWeigth>
  <Tune>0</Tune>
  <TuneTimeLimit>5</TuneTimeLimit>
  <Solver>z3</Solver>
</ScheduleConfiguration>`

// TestRunProducesScheduleFile exercises the CLI's run() end to end against
// real files on disk, the same integration style as the teacher's
// cmd/simulator main_test.go.
func TestRunProducesScheduleFile(t *testing.T) {
	dir := t.TempDir()
	networkPath := filepath.Join(dir, "network.xml")
	configPath := filepath.Join(dir, "configuration.xml")
	schedulePath := filepath.Join(dir, "schedule.xml")

	if err := os.WriteFile(networkPath, []byte(integrationNetworkXML), 0o644); err != nil {
		t.Fatalf("write network.xml: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(integrationConfigXML), 0o644); err != nil {
		t.Fatalf("write configuration.xml: %v", err)
	}

	if err := run(context.Background(), networkPath, schedulePath, configPath, filepath.Join(dir, "tune.xml"), nil, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	doc, err := config.ReadSchedule(schedulePath)
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(doc.Frames) != 1 || len(doc.Frames[0].Offsets) != 1 {
		t.Fatalf("unexpected schedule document: %+v", doc)
	}
}

func TestAdapterForRejectsUnknownSolver(t *testing.T) {
	if _, err := adapterFor("unknown"); err == nil {
		t.Fatal("expected error for unknown solver name")
	}
}
