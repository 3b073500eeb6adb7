package glbackend

// Built-in GLSL sources for the chunk pipeline. Vertex layout matches the
// mesher output: location 0 position, location 1 normal.

const ChunkVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 mvp;

out vec3 vNormal;

void main() {
    vNormal = aNormal;
    gl_Position = mvp * vec4(aPos, 1.0);
}
`

const ChunkFragmentShader = `#version 410 core
in vec3 vNormal;

uniform vec3 lightDir;

out vec4 fragColor;

void main() {
    float diff = max(dot(normalize(vNormal), normalize(lightDir)), 0.0);
    vec3 base = vec3(0.55, 0.70, 0.45);
    vec3 color = base * (0.35 + 0.65 * diff);
    fragColor = vec4(color, 1.0);
}
`
