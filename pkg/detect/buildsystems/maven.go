package buildsystems

import (
	"encoding/xml"
	"fmt"
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type maven struct{ base }

// Maven detects Maven projects via pom.xml.
func Maven() detect.BuildSystem {
	return &maven{base{
		id:        types.BuildMaven,
		manifests: []detect.ManifestSpec{{Filename: "pom.xml", Priority: 1}},
		languages: []types.LanguageID{types.LangJava, types.LangKotlin},
	}}
}

type pomXML struct {
	Properties struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"properties"`
	Dependencies struct {
		Dependency []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
			Version    string `xml:"version"`
			Scope      string `xml:"scope"`
		} `xml:"dependency"`
	} `xml:"dependencies"`
}

func (m *maven) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !m.matchesManifest(in) {
		return "", false
	}
	return m.id, true
}

func (m *maven) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var pom pomXML
	if err := xml.Unmarshal(manifest, &pom); err != nil {
		return nil, fmt.Errorf("parsing pom.xml: %w", err)
	}
	info := &types.DependencyInfo{}
	for _, d := range pom.Dependencies.Dependency {
		scope := d.Scope
		if scope == "" {
			scope = "runtime"
		}
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name:      d.GroupID + ":" + d.ArtifactID,
			Version:   d.Version,
			Scope:     scope,
			Ecosystem: types.EcosystemMaven,
		})
	}
	return info, nil
}

var pomJavaHintRe = regexp.MustCompile(`<(?:maven\.compiler\.(?:release|source)|java\.version)>\s*([\d.]+)\s*<`)

func (m *maven) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := ""
	if match := pomJavaHintRe.FindStringSubmatch(string(in.ManifestContent)); match != nil {
		hint = match[1]
	}
	jdk := resolveToolchain(idx, "openjdk", hint)
	return &types.BuildTemplate{
		BuildPackages:    []string{jdk, "maven"},
		RuntimePackages:  []string{jreFor(jdk)},
		BuildCommands:    []string{"mvn -B package -DskipTests"},
		ArtifactPaths:    []string{"target/*.jar"},
		CacheDirectories: []string{"~/.m2/repository"},
	}, nil
}
