package mathrender

// Preamble is prepended to every document: an auto-sized page on Discord's
// dark background plus the shorthands people expect from LaTeX.
const Preamble = `#set page(width: auto, height: auto, margin: 10pt)

#let fg = rgb(219, 222, 225)
#let bg = rgb(49, 51, 56)

#set text(
  font: (
    "EB Garamond 12",
    "DejaVu Sans Mono"
  ),
  size: 18pt,
  number-type: "lining",
  number-width: "tabular",
  weight: "regular",
)

#set page(fill: bg)
#set text(fill: fg)

#let infty = [#sym.infinity]

#let di = [#math.dif i]
#let du = [#math.dif u]
#let dr = [#math.dif r]
#let ds = [#math.dif s]
#let dt = [#math.dif t]
#let dx = [#math.dif x]
#let dy = [#math.dif y]
#let dz = [#math.dif z]

#let int = [#sym.integral]
#let iint = [#sym.integral.double]

#let mathbox(content) = context {
  let size = measure(content)
  block(
    radius: 0.2em,
    stroke: fg,
    inset: size.height / 1.5,
    content,
  )
}

`
