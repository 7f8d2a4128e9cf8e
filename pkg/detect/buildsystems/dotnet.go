package buildsystems

import (
	"encoding/xml"
	"fmt"
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type dotnet struct{ base }

// DotNet detects .NET SDK projects via *.csproj / *.fsproj.
func DotNet() detect.BuildSystem {
	return &dotnet{base{
		id: types.BuildDotNet,
		manifests: []detect.ManifestSpec{
			{Filename: "*.csproj", Priority: 2},
			{Filename: "*.fsproj", Priority: 2},
		},
		languages: []types.LanguageID{types.LangCSharp, types.LangFSharp},
	}}
}

type csprojXML struct {
	PropertyGroup []struct {
		TargetFramework string `xml:"TargetFramework"`
		OutputType      string `xml:"OutputType"`
	} `xml:"PropertyGroup"`
	ItemGroup []struct {
		PackageReference []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

func (d *dotnet) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !d.matchesManifest(in) {
		return "", false
	}
	return d.id, true
}

func (d *dotnet) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var proj csprojXML
	if err := xml.Unmarshal(manifest, &proj); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}
	info := &types.DependencyInfo{}
	for _, ig := range proj.ItemGroup {
		for _, ref := range ig.PackageReference {
			info.Dependencies = append(info.Dependencies, types.Dependency{
				Name: ref.Include, Version: ref.Version, Scope: "runtime",
				Ecosystem: types.EcosystemNuget,
			})
		}
	}
	return info, nil
}

var netTargetRe = regexp.MustCompile(`<TargetFramework>net([\d.]+)</TargetFramework>`)

func (d *dotnet) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := ""
	if m := netTargetRe.FindStringSubmatch(string(in.ManifestContent)); m != nil {
		hint = m[1]
	}
	sdk := resolveToolchain(idx, "dotnet", hint)
	return &types.BuildTemplate{
		BuildPackages:    []string{sdk + "-sdk"},
		RuntimePackages:  []string{sdk + "-runtime"},
		BuildCommands:    []string{"dotnet publish -c Release -o out"},
		ArtifactPaths:    []string{"out/"},
		CacheDirectories: []string{"~/.nuget/packages"},
	}, nil
}
