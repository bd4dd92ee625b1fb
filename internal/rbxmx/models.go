package rbxmx

// ContainerModelParams describe a single ad container.
type ContainerModelParams struct {
	ContainerID   string
	ContainerType string
	GameID        string
}

// ContainerModel returns a model holding one anchored part sized for the
// container type, its metadata folder and, for displays, a surface.
func ContainerModel(params *ContainerModelParams) ([]byte, error) {
	x, y, z := containerSize(params.ContainerType)
	part := NewItem("Part", params.ContainerID,
		Bool("Anchored", true),
		Vector3("size", x, y, z),
	)

	part.Add(NewItem("Folder", "MMLMetadata").Add(
		NewItem("StringValue", "ContainerId", String("Value", params.ContainerID)),
		NewItem("StringValue", "GameId", String("Value", params.GameID)),
		NewItem("StringValue", "Type", String("Value", params.ContainerType)),
		NewItem("BoolValue", "EnablePositionSync", Bool("Value", true)),
	))

	if params.ContainerType == "DISPLAY" {
		part.Add(NewItem("SurfaceGui", "MMLDisplaySurface",
			Token("Face", "5"),
			Token("SizingMode", "1"),
			Vector2("CanvasSize", 1024, 576),
			Bool("AlwaysOnTop", true),
		).Add(NewItem("Frame", "Frame",
			UDim2("Size", 1, 0, 1, 0),
			Float("BackgroundTransparency", 1),
		)))
	}

	model := NewItem("Model", "MMLContainer_"+params.ContainerType).Add(part)
	return Encode(model)
}

func containerSize(containerType string) (x, y, z float64) {
	switch containerType {
	case "DISPLAY":
		return 10, 5, 0.5
	case "NPC":
		return 2, 6, 2
	default:
		return 8, 8, 8
	}
}

// Module is a library ModuleScript.
type Module struct {
	Name   string
	Source string
}

// BootstrapParams describe a bootstrap bundle.
type BootstrapParams struct {
	GameID          string
	BuildID         string
	Version         string
	Modules         []Module
	BootstrapSource string
}

// Bootstrap returns an "MML" folder holding a manifest folder, the library
// modules and the bootstrap script.
func Bootstrap(params *BootstrapParams) ([]byte, error) {
	manifest := NewItem("Folder", "MML.Manifest").Add(
		NewItem("StringValue", "Version", String("Value", params.Version)),
		NewItem("StringValue", "GameId", String("Value", params.GameID)),
		NewItem("StringValue", "BuildId", String("Value", params.BuildID)),
	)

	root := NewItem("Folder", "MML").Add(manifest)
	for _, m := range params.Modules {
		root.Add(NewItem("ModuleScript", m.Name, ProtectedString("Source", m.Source)))
	}
	root.Add(NewItem("Script", "MMLNetworkBootstrap", ProtectedString("Source", params.BootstrapSource)))

	return Encode(root)
}
