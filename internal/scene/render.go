package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"lod-engine/internal/geom"
	"lod-engine/internal/primitives"
	"lod-engine/internal/scenegraph"
)

// gpuMesh keeps the vertex slices alive for as long as raylib references them.
type gpuMesh struct {
	mesh      rl.Mesh
	positions []float32
	normals   []float32
}

// renderer uploads scene-graph geometry on first draw and shares one lit
// material per MaterialID.
type renderer struct {
	reg       *primitives.Registry
	meshes    map[*geom.Geometry]*gpuMesh
	materials map[scenegraph.MaterialID]rl.Material
	shader    rl.Shader
	loaded    bool
	viewPos   [3]float32
	lightDir  [3]float32

	drawCalls int
	triangles int
}

func newRenderer(reg *primitives.Registry) *renderer {
	return &renderer{
		reg:       reg,
		meshes:    make(map[*geom.Geometry]*gpuMesh),
		materials: make(map[scenegraph.MaterialID]rl.Material),
		lightDir:  [3]float32{0.5, 1, 0.5}, // from above-right
	}
}

// begin starts a frame: resets counters and pushes lighting uniforms.
func (r *renderer) begin(viewPos rl.Vector3) {
	if !r.loaded {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
		r.loaded = true
	}
	r.drawCalls, r.triangles = 0, 0
	r.viewPos = [3]float32{viewPos.X, viewPos.Y, viewPos.Z}
	r.setLitShaderUniforms()
}

func (r *renderer) draw(n *scenegraph.Node) {
	if n.Geometry.TriangleCount() == 0 {
		return
	}
	m := r.mesh(n.Geometry)
	rl.DrawMesh(m.mesh, r.material(n.Material), toMatrix(n.Transform.Matrix()))
	r.drawCalls++
	r.triangles += int(m.mesh.TriangleCount)
}

func (r *renderer) mesh(g *geom.Geometry) *gpuMesh {
	if m, ok := r.meshes[g]; ok {
		return m
	}
	vertices := g.TriangleCount() * 3
	m := &gpuMesh{
		positions: make([]float32, 0, vertices*3),
		normals:   make([]float32, 0, vertices*3),
	}
	for i := 0; i < vertices; i++ {
		p := g.Positions[i]
		m.positions = append(m.positions, p[0], p[1], p[2])
		n := mgl32.Vec3{0, 1, 0}
		if i < len(g.Normals) {
			n = g.Normals[i]
		}
		m.normals = append(m.normals, n[0], n[1], n[2])
	}
	m.mesh.VertexCount = int32(vertices)
	m.mesh.TriangleCount = int32(vertices / 3)
	m.mesh.Vertices = &m.positions[0]
	m.mesh.Normals = &m.normals[0]
	rl.UploadMesh(&m.mesh, false)
	r.meshes[g] = m
	return m
}

func (r *renderer) material(id scenegraph.MaterialID) rl.Material {
	if mtl, ok := r.materials[id]; ok {
		return mtl
	}
	mtl := rl.LoadMaterialDefault()
	c := r.reg.MaterialColor(id)
	if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(c[0], c[1], c[2], c[3])
	}
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	r.materials[id] = mtl
	return mtl
}

func (r *renderer) unload() {
	for g, m := range r.meshes {
		rl.UnloadMesh(&m.mesh)
		delete(r.meshes, g)
	}
	// Materials share the shader; unload it once.
	r.materials = make(map[scenegraph.MaterialID]rl.Material)
	if r.loaded {
		rl.UnloadShader(r.shader)
		r.loaded = false
	}
}

// toMatrix converts a column-major mgl32 matrix to raylib's layout.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)

var (
	defaultAmbient    = [4]float32{0.2, 0.22, 0.26, 1.0}
	defaultLightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	defaultLightIntensity   = float32(0.75)
	defaultSpecularPower    = float32(48.0)
	defaultSpecularStrength = float32(0.35)
)

// setLitShaderUniforms sets view position, light and specular terms (cgo-safe: local arrays).
func (r *renderer) setLitShaderUniforms() {
	if !rl.IsShaderValid(r.shader) {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := defaultAmbient
	lightColor := defaultLightColor
	set := func(name string, v []float32, typ rl.ShaderUniformDataType) {
		if loc := rl.GetShaderLocation(r.shader, name); loc >= 0 {
			rl.SetShaderValue(r.shader, loc, v, typ)
		}
	}
	set("viewPos", viewPos[:], rl.ShaderUniformVec3)
	set("lightDir", lightDir[:], rl.ShaderUniformVec3)
	set("ambient", amb[:], rl.ShaderUniformVec4)
	set("lightColor", lightColor[:], rl.ShaderUniformVec3)
	set("lightIntensity", []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	set("specularPower", []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	set("specularStrength", []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
}
